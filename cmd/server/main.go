package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	custodyapp "github.com/atelier/backend/internal/application/custody"
	locationapp "github.com/atelier/backend/internal/application/location"
	orderapp "github.com/atelier/backend/internal/application/order"
	paymentapp "github.com/atelier/backend/internal/application/payment"
	transferapp "github.com/atelier/backend/internal/application/transfer"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/cache"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"github.com/atelier/backend/internal/infrastructure/storage"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/atelier/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Atelier Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database query tracing when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingConfig := telemetry.DefaultDBTracingConfig()
		dbTracingConfig.Enabled = true
		dbTracingPlugin := telemetry.NewDBTracingPlugin(dbTracingConfig, log)
		if err := dbTracingPlugin.Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize object storage for custody photos
	photoStorage, err := storage.NewS3PhotoStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		log.Fatal("Failed to initialize photo storage", zap.Error(err))
	}
	if cfg.App.Env != "production" {
		// Local MinIO setups start empty; production buckets are provisioned
		// out of band
		if err := photoStorage.EnsureBucket(context.Background()); err != nil {
			log.Warn("Failed to ensure photo bucket", zap.Error(err))
		}
	}

	// Initialize repositories
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	custodyRepo := persistence.NewGormCustodyRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)

	// Initialize application services
	locationService := locationapp.NewService(locationRepo, stockItemRepo)
	orderService := orderapp.NewService(orderRepo, locationRepo, stockItemRepo, custodyRepo)
	paymentService := paymentapp.NewService(paymentRepo, orderRepo)
	custodyService := custodyapp.NewService(custodyRepo, orderRepo, photoStorage)
	transferService := transferapp.NewService(transferRepo, locationRepo, stockItemRepo)

	// Redis-backed resolver cache is optional: location resolution falls back
	// to the database when Redis is unavailable
	resolverCache, err := cache.NewRedisResolverCache(cfg.Redis, cache.WithResolverCacheLogger(log))
	if err != nil {
		log.Warn("Resolver cache unavailable, resolving locations from database only", zap.Error(err))
	} else {
		locationService.SetResolverCache(resolverCache)
		defer func() {
			if err := resolverCache.Close(); err != nil {
				log.Error("Error closing resolver cache", zap.Error(err))
			}
		}()
		log.Info("Resolver cache connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// JWT service for request authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	locationHandler := handler.NewLocationHandler(locationService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	custodyHandler := handler.NewCustodyHandler(custodyService)
	transferHandler := handler.NewTransferHandler(transferService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OpenTelemetry spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	// 9. JWT - Authenticate API requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit covers custody photo multipart uploads
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// JWT authentication with skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(systemHandler).
		Register(locationHandler).
		Register(orderHandler).
		Register(paymentHandler).
		Register(custodyHandler).
		Register(transferHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
