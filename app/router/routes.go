// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/handlers"
	"github.com/amirphl/cleaning-orders/app/middleware"
	"github.com/amirphl/cleaning-orders/config"
	_ "github.com/amirphl/cleaning-orders/docs"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Order      handlers.OrderHandlerInterface
	AdminOrder handlers.AdminOrderHandlerInterface
	AdminAuth  handlers.AdminAuthHandlerInterface
	Contact    handlers.ContactHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	handlers Handlers
	auth     *middleware.AuthMiddleware
	cfg      *config.ProductionConfig
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, auth *middleware.AuthMiddleware, cfg *config.ProductionConfig) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Cleaning Orders API",
		ServerHeader: "cleaning-orders",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ProxyHeader:  cfg.Server.ProxyHeader,
		TrustProxy:   len(cfg.Server.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Proxies: cfg.Server.TrustedProxies,
		},
	})

	return &FiberRouter{
		app:      app,
		handlers: h,
		auth:     auth,
		cfg:      cfg,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)
	api.Get("/swagger.json", r.serveSwaggerJSON)

	// General rate limiting for all API routes
	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	// Public endpoints
	pricing := api.Group("/pricing")
	pricing.Get("/catalog", r.handlers.Order.Catalog)
	pricing.Post("/quote", r.handlers.Order.Quote)

	publicWrites := r.rateLimiter(r.cfg.Security.PublicRateLimit, nil)
	api.Post("/orders", publicWrites, r.handlers.Order.Submit)
	api.Get("/track/:trackingCode", r.handlers.Order.Track)
	api.Post("/contact", publicWrites, r.handlers.Contact.Send)

	// Admin authentication
	adminAuth := api.Group("/admin/auth")
	adminAuth.Get("/captcha/init", r.handlers.AdminAuth.InitCaptcha)
	adminAuth.Post("/login", r.rateLimiter(r.cfg.Security.AuthRateLimit, nil), r.handlers.AdminAuth.Login)
	adminAuth.Get("/check", r.auth.AdminAuthenticate(), r.handlers.AdminAuth.Check)
	adminAuth.Post("/logout", r.auth.AdminAuthenticate(), r.handlers.AdminAuth.Logout)

	// Admin order management
	orders := api.Group("/admin/orders", r.auth.AdminAuthenticate())
	orders.Get("/", r.handlers.AdminOrder.List)
	orders.Get("/export.csv", r.handlers.AdminOrder.ExportCSV)
	orders.Get("/export.xlsx", r.handlers.AdminOrder.ExportExcel)
	orders.Get("/:id", r.handlers.AdminOrder.Get)
	orders.Patch("/:id", r.handlers.AdminOrder.Update)
	orders.Put("/:id/status", r.handlers.AdminOrder.UpdateStatus)
	orders.Put("/:id/final-price", r.handlers.AdminOrder.SetFinalPrice)
	orders.Post("/:id/send-quote", r.handlers.AdminOrder.SendQuote)
	orders.Get("/:id/history", r.handlers.AdminOrder.History)

	// 404 handler for unmatched routes
	r.app.Use(r.notFoundHandler)

	log.Println("Routes setup completed")
}

// rateLimiter limits requests per client IP within the configured window
func (r *FiberRouter) rateLimiter(max int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: generateRequestID,
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'self'; img-src 'self' data:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				contentType := c.Get("Content-Type")
				return strings.Contains(contentType, "image/")
			},
		}))
	}

	// The price table is immutable for the life of the process
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet || c.Path() != "/api/v1/pricing/catalog"
		},
		Expiration:          10 * time.Minute,
		DisableCacheControl: false,
	}))

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%v","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.Deployment.Version,
			"service":   "cleaning-orders-api",
		},
	})
}

func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// errorHandler renders errors that escape the handlers
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	log.Printf("Error %d: %v", code, err)

	message := "An internal server error occurred"
	errCode := "INTERNAL_ERROR"
	if code < fiber.StatusInternalServerError && fe != nil {
		message = fe.Message
		errCode = "REQUEST_ERROR"
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
