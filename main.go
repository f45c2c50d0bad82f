// Package main provides the entry point of the cleaning orders service
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/cleaning-orders/app/handlers"
	"github.com/amirphl/cleaning-orders/app/middleware"
	"github.com/amirphl/cleaning-orders/app/router"
	"github.com/amirphl/cleaning-orders/app/services"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/amirphl/cleaning-orders/config"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/repository"
	"github.com/amirphl/cleaning-orders/utils"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Application holds the wired server and what must be released on shutdown
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "cleaning-orders",
		Short:         "Cleaning services pricing, order intake and back office",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer()

			db, err := initializeDatabase(cfg.Database)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(models.AllModels()...); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			log.Println("Database schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer()

			username = utils.SanitizeInput(username)
			if len(username) < 3 {
				return errors.New("username must be at least 3 characters")
			}
			if len(password) < cfg.Security.PasswordMinLength {
				return fmt.Errorf("password must be at least %d characters", cfg.Security.PasswordMinLength)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			db, err := initializeDatabase(cfg.Database)
			if err != nil {
				return err
			}

			now := utils.UTCNow()
			admin := models.Admin{
				Username:     username,
				PasswordHash: string(hash),
				IsActive:     utils.ToPtr(true),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			err = db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "username"}},
				DoUpdates: clause.AssignmentColumns([]string{"password_hash", "is_active", "updated_at"}),
			}).Create(&admin).Error
			if err != nil {
				return fmt.Errorf("failed to save admin: %w", err)
			}

			log.Printf("Admin %q is ready", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// loadConfig loads and validates the configuration and points the logger at
// its configured output
func loadConfig() (*config.ProductionConfig, func(), error) {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	closer := utils.SetupLogging(utils.LogOutput{
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	return cfg, func() { _ = closer.Close() }, nil
}

func runServe() error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer()

	log.Println("Starting cleaning orders service...")

	app, err := initializeApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		for _, fn := range app.stopFuncs {
			fn()
		}
	}()

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		serverErr <- app.router.Start(address)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-sigChan:
	}

	log.Println("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache connects to Redis when it is configured. A nil client means
// the in-memory store is used.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// initializeEmailProvider picks SES or the logging mock
func initializeEmailProvider(cfg config.EmailConfig) (services.EmailProvider, error) {
	if cfg.Provider != "ses" {
		log.Println("Email provider: mock (messages are only logged)")
		return services.NewMockEmailProvider(), nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	log.Printf("Email provider: SES (%s)", cfg.AWSRegion)
	return services.NewSESEmailProvider(awsCfg, cfg.FromEmail, cfg.FromName), nil
}

// initializeApplication wires repositories, services, flows and handlers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		stopFuncs = append(stopFuncs, func() { _ = sqlDB.Close() })
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	var kv services.KeyValueStore = services.NewMemoryStore()
	if rc != nil {
		kv = services.NewRedisStore(rc, cfg.Cache.RedisPrefix)
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	changeRepo := repository.NewOrderStatusChangeRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	emailProvider, err := initializeEmailProvider(cfg.Email)
	if err != nil {
		return nil, err
	}
	profile := services.BusinessProfile{
		Name:          cfg.Orders.BusinessName,
		Phone:         cfg.Orders.BusinessPhone,
		Email:         cfg.Orders.BusinessEmail,
		PublicBaseURL: cfg.Orders.PublicBaseURL,
		Inbox:         cfg.Orders.ContactInbox,
	}
	notifier := services.NewNotifier(emailProvider, services.NewPNGQuoteRenderer(profile), profile)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		kv,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	var captchaSvc services.CaptchaService
	if cfg.Admin.CaptchaEnabled {
		captchaSvc, err = services.NewCaptchaServiceRotate(kv, cfg.Admin.CaptchaTTL, cfg.Admin.CaptchaPadding, cfg.Admin.CaptchaImgSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize captcha: %w", err)
		}
	}

	// The price table is built once and shared read-only
	table := pricing.DefaultTable()
	loc := utils.LoadLocationOrUTC(cfg.Orders.BusinessTimezone)

	// Flows
	orderFlow := businessflow.NewOrderFlow(
		orderRepo,
		pricing.NewCalculator(table),
		businessflow.NewOrderValidator(table, loc),
		notifier,
		cfg.Orders,
	)
	adminOrderFlow := businessflow.NewAdminOrderFlow(orderRepo, changeRepo, notifier, db, cfg.Orders)
	adminAuthFlow := businessflow.NewAdminAuthFlow(adminRepo, tokenService, captchaSvc, cfg.Admin.CaptchaEnabled)
	contactFlow := businessflow.NewContactFlow(notifier)

	// Handlers
	h := router.Handlers{
		Order:      handlers.NewOrderHandler(orderFlow),
		AdminOrder: handlers.NewAdminOrderHandler(adminOrderFlow),
		AdminAuth: handlers.NewAdminAuthHandler(adminAuthFlow, handlers.AdminCookieConfig{
			Secure:   cfg.Security.CookieSecure,
			SameSite: cfg.Security.CookieSameSite,
			Domain:   cfg.Security.CookieDomain,
		}),
		Contact: handlers.NewContactHandler(contactFlow),
	}

	return &Application{
		router:    router.NewFiberRouter(h, middleware.NewAuthMiddleware(tokenService), cfg),
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
