package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/practicehub/payments-service/internal/credentials"
	"github.com/practicehub/payments-service/internal/di"
	"github.com/practicehub/payments-service/internal/factory"
	"github.com/practicehub/payments-service/internal/repository"
	"github.com/practicehub/payments-service/pkg/config"
	"github.com/practicehub/payments-service/pkg/database"
	"github.com/practicehub/payments-service/pkg/logger"
	"github.com/practicehub/payments-service/pkg/middleware"
	pkgredis "github.com/practicehub/payments-service/pkg/redis"
	"github.com/practicehub/payments-service/pkg/telemetry"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Payments Service...")

	ctx := context.Background()

	// Initialize telemetry
	if cfg.OTel.Enabled {
		if _, err := telemetry.Init(ctx, &telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			CollectorAddr:  cfg.OTel.CollectorAddr,
		}); err != nil {
			appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
		} else {
			defer telemetry.Shutdown(ctx)
		}
	}

	// Initialize database connection
	var db *database.PostgresDB
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.App.Name,
	}
	db, err = database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Database connection failed: %v", err))
		db = nil
	} else {
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))
	}

	// Initialize Redis connection
	var redisClient *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))
	}

	// Initialize the credential cipher. Without a key, only env-sourced
	// credentials are usable.
	var cipher *credentials.Cipher
	if cfg.Encryption.Key != "" {
		cipher, err = credentials.NewCipher(cfg.Encryption.Key)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Invalid encryption key: %v", err))
		}
	} else {
		appLog.Warn("ENCRYPTION_KEY not set, stored gateway credentials are unavailable")
	}

	// Initialize credential store
	var credStore credentials.Store
	if db != nil {
		credStore = credentials.NewPostgresStore(db)
		appLog.Info("Using PostgreSQL gateway config store")
	} else {
		credStore = credentials.NewMemoryStore()
		appLog.Warn("Using in-memory gateway config store (env fallback only)")
	}
	resolver := credentials.NewResolver(credStore, cipher)

	// Initialize order repository
	var orderRepo repository.OrderRepository
	if db != nil {
		orderRepo = repository.NewPostgresOrderRepository(db)
		appLog.Info("Using PostgreSQL order repository")
	} else {
		orderRepo = repository.NewMemoryOrderRepository()
		appLog.Warn("Using in-memory order repository (data will not persist)")
	}

	// Build the provider registry. The mock adapter is only routable when
	// explicitly enabled or in development.
	registry := factory.DefaultRegistry()
	if cfg.Gateway.MockEnabled || cfg.IsDevelopment() {
		factory.RegisterMock(registry)
		appLog.Warn("Mock payment gateway enabled")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:          db,
		Redis:       redisClient,
		Resolver:    resolver,
		Registry:    registry,
		OrderRepo:   orderRepo,
		WithBreaker: cfg.Gateway.BreakerEnabled,
		Logger:      appLog,
	})

	// Start from an empty adapter cache so stale instances never survive a
	// deploy that changed keys or configuration schema.
	container.Factory.Clear()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		v1.GET("/gateways", container.GatewayHandler.ListGateways)
		v1.POST("/gateways/invalidate", container.GatewayHandler.InvalidateCache)

		if container.PaymentHandler != nil {
			orders := v1.Group("/orders")

			// Configure idempotency middleware for write operations
			var idempotencyConfig *middleware.IdempotencyConfig
			if redisClient != nil {
				idempotencyConfig = middleware.DefaultIdempotencyConfig(redisClient.Client())
				if cfg.Gateway.IdempotencyTTL > 0 {
					idempotencyConfig.TTL = cfg.Gateway.IdempotencyTTL
				}
			}

			if idempotencyConfig != nil {
				orders.POST("", middleware.IdempotencyMiddleware(idempotencyConfig), container.PaymentHandler.CreateOrder)
				orders.POST("/:id/refund", middleware.IdempotencyMiddleware(idempotencyConfig), container.PaymentHandler.RefundOrder)
			} else {
				orders.POST("", container.PaymentHandler.CreateOrder)
				orders.POST("/:id/refund", container.PaymentHandler.RefundOrder)
			}

			orders.GET("/:id", container.PaymentHandler.GetOrder)

			v1.GET("/checkout-asset", container.PaymentHandler.GetCheckoutAsset)

			// Provider callbacks carry their own signature; the idempotency
			// middleware must not intercept them.
			v1.POST("/webhooks/:provider", container.WebhookHandler.HandleWebhook)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Payments Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
