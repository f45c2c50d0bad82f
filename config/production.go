// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	// BUSINESS_TIMEZONE must resolve on hosts without zoneinfo
	_ "time/tzdata"

	"github.com/amirphl/cleaning-orders/utils"
	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Email      EmailConfig      `json:"email"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Deployment DeploymentConfig `json:"deployment"`
	Admin      AdminConfig      `json:"admin"`
	Orders     OrdersConfig     `json:"orders"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

// DSN is the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	AuthRateLimit   int           `json:"auth_rate_limit"`   // requests per window on login
	PublicRateLimit int           `json:"public_rate_limit"` // requests per window on orders and contact
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	// Password & Auth
	PasswordMinLength int `json:"password_min_length"`
	BcryptCost        int `json:"bcrypt_cost"`

	// Admin session cookie
	CookieSecure   bool   `json:"cookie_secure"`
	CookieSameSite string `json:"cookie_same_site"`
	CookieDomain   string `json:"cookie_domain"`
}

type JWTConfig struct {
	SecretKey       string        `json:"-"`
	PrivateKey      string        `json:"-"`
	PublicKey       string        `json:"-"`
	UseRSAKeys      bool          `json:"use_rsa_keys"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

// EmailConfig selects the outbound email provider. "mock" only logs.
type EmailConfig struct {
	Provider  string `json:"provider"` // mock, ses
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	AWSRegion string `json:"aws_region"`
	// AWSProfile is optional; the default credential chain is used when empty
	AWSProfile string        `json:"aws_profile"`
	Timeout    time.Duration `json:"timeout"`
}

type LoggingConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled     bool   `json:"enabled"`
	Provider    string `json:"provider"` // redis, memory
	RedisURL    string `json:"redis_url"`
	RedisDB     int    `json:"redis_db"`
	RedisPrefix string `json:"redis_prefix"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
}

type AdminConfig struct {
	CaptchaEnabled bool          `json:"captcha_enabled"`
	CaptchaTTL     time.Duration `json:"captcha_ttl"`
	CaptchaPadding int           `json:"captcha_padding"` // degrees of tolerance
	CaptchaImgSize int           `json:"captcha_img_size"`
}

// OrdersConfig drives order intake and the admin lifecycle
type OrdersConfig struct {
	// NotifyOnReceived sends the order confirmation email on submission
	NotifyOnReceived bool `json:"notify_on_received"`
	// StrictStatusTransitions allows only forward moves (received -> in_progress -> completed)
	StrictStatusTransitions bool   `json:"strict_status_transitions"`
	BusinessTimezone        string `json:"business_timezone"`
	PublicBaseURL           string `json:"public_base_url"`
	ContactInbox            string `json:"contact_inbox"`
	BusinessName            string `json:"business_name"`
	BusinessPhone           string `json:"business_phone"`
	BusinessEmail           string `json:"business_email"`
}

// LoadProductionConfig loads configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Existing environment variables win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "cleaning_orders"),
			User:            getEnvString("DB_USER", "cleaning"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 500*time.Millisecond),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024),
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", ""),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:    getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:    getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:    getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			AllowCredentials:  getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:        getEnvInt("CORS_MAX_AGE", utils.CORSMaxAge),
			AuthRateLimit:     getEnvInt("AUTH_RATE_LIMIT", 5),
			PublicRateLimit:   getEnvInt("PUBLIC_RATE_LIMIT", 10),
			GlobalRateLimit:   getEnvInt("GLOBAL_RATE_LIMIT", 100),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
			BcryptCost:        getEnvInt("BCRYPT_COST", 12),
			CookieSecure:      getEnvBool("COOKIE_SECURE", true),
			CookieSameSite:    getEnvString("COOKIE_SAMESITE", "Lax"),
			CookieDomain:      getEnvString("COOKIE_DOMAIN", ""),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", utils.AccessTokenTTL),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", utils.RefreshTokenTTL),
			Issuer:          getEnvString("JWT_ISSUER", "cleaning-orders"),
			Audience:        getEnvString("JWT_AUDIENCE", "cleaning-orders-admin"),
		},
		Email: EmailConfig{
			Provider:   getEnvString("EMAIL_PROVIDER", "mock"),
			FromEmail:  getEnvString("EMAIL_FROM_EMAIL", ""),
			FromName:   getEnvString("EMAIL_FROM_NAME", ""),
			AWSRegion:  getEnvString("AWS_REGION", "eu-central-1"),
			AWSProfile: getEnvString("AWS_PROFILE", ""),
			Timeout:    getEnvDuration("EMAIL_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			Format:     getEnvString("LOG_FORMAT", "json"),
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/cleaning-orders/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", true),
			Provider:    getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:    getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix: getEnvString("CACHE_REDIS_PREFIX", "cleaning:"),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
		},
		Admin: AdminConfig{
			CaptchaEnabled: getEnvBool("ADMIN_CAPTCHA_ENABLED", true),
			CaptchaTTL:     getEnvDuration("ADMIN_CAPTCHA_TTL", 2*time.Minute),
			CaptchaPadding: getEnvInt("ADMIN_CAPTCHA_PADDING", 10),
			CaptchaImgSize: getEnvInt("ADMIN_CAPTCHA_IMG_SIZE", 220),
		},
		Orders: OrdersConfig{
			NotifyOnReceived:        getEnvBool("NOTIFY_ORDER_RECEIVED", false),
			StrictStatusTransitions: getEnvBool("ORDER_STRICT_STATUS_TRANSITIONS", false),
			BusinessTimezone:        getEnvString("BUSINESS_TIMEZONE", utils.DefaultBusinessTimezone),
			PublicBaseURL:           strings.TrimRight(getEnvString("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
			ContactInbox:            getEnvString("CONTACT_INBOX", ""),
			BusinessName:            getEnvString("BUSINESS_NAME", "Czyste Beskidy"),
			BusinessPhone:           getEnvString("BUSINESS_PHONE", "+48 880 118 995"),
			BusinessEmail:           getEnvString("BUSINESS_EMAIL", ""),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for item := range strings.SplitSeq(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration.
// Every problem is reported, not just the first.
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var problems []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		problems = append(problems, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		problems = append(problems, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		problems = append(problems, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		problems = append(problems, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		problems = append(problems, "DB_PASSWORD is required")
	}

	// Validate JWT configuration
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			problems = append(problems, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when JWT_USE_RSA_KEYS is true")
		}
	} else if len(cfg.JWT.SecretKey) < 32 {
		problems = append(problems, "JWT_SECRET_KEY must be at least 32 characters")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		problems = append(problems, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		problems = append(problems, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		problems = append(problems, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		problems = append(problems, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		problems = append(problems, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		problems = append(problems, "SERVER_WRITE_TIMEOUT must be positive")
	}

	// Validate security configuration
	if cfg.Security.PasswordMinLength < 8 {
		problems = append(problems, "PASSWORD_MIN_LENGTH must be at least 8")
	}
	if cfg.Security.BcryptCost < 10 || cfg.Security.BcryptCost > 14 {
		problems = append(problems, "BCRYPT_COST must be between 10 and 14")
	}
	if !slices.Contains([]string{"Strict", "Lax", "None"}, cfg.Security.CookieSameSite) {
		problems = append(problems, "COOKIE_SAMESITE must be one of: Strict, Lax, None")
	}

	// Validate email configuration
	switch cfg.Email.Provider {
	case "mock":
	case "ses":
		if cfg.Email.FromEmail == "" {
			problems = append(problems, "EMAIL_FROM_EMAIL is required for the ses provider")
		}
		if cfg.Email.AWSRegion == "" {
			problems = append(problems, "AWS_REGION is required for the ses provider")
		}
	default:
		problems = append(problems, "EMAIL_PROVIDER must be one of: mock, ses")
	}

	// Validate logging configuration
	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		if !slices.Contains(validLevels, cfg.Logging.Level) {
			problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}
	if !slices.Contains([]string{"stdout", "file", "both"}, cfg.Logging.Output) {
		problems = append(problems, "LOG_OUTPUT must be one of: stdout, file, both")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		problems = append(problems, "LOG_FILE_PATH is required when logging to a file")
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled {
		if cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
			problems = append(problems, "CACHE_REDIS_URL is required when cache is enabled with redis provider")
		}
	}

	// Validate admin configuration
	if cfg.Admin.CaptchaEnabled && cfg.Admin.CaptchaTTL <= 0 {
		problems = append(problems, "ADMIN_CAPTCHA_TTL must be positive")
	}

	// Validate order configuration
	if _, err := time.LoadLocation(cfg.Orders.BusinessTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("BUSINESS_TIMEZONE %q is not a valid IANA zone", cfg.Orders.BusinessTimezone))
	}
	if cfg.Orders.ContactInbox == "" {
		problems = append(problems, "CONTACT_INBOX is required")
	}

	// Return validation errors if any
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}

	return nil
}
