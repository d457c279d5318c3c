package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/lock"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/metrics"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tp, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == "sqlite" {
		// postgres schemas come from cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	m := metrics.New()
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := m.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	// Redis serves the shared order lock and cross-instance cache invalidation
	var redisClient *redis.Client
	if cfg.Lock.Backend == "redis" || cfg.Cart.InvalidationChannel != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		if err := redisClient.Ping(rootCtx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var locker order.Locker
	if cfg.Lock.Backend == "redis" {
		locker = lock.NewRedisLocker(redisClient, lock.RedisLockerConfig{
			KeyPrefix:     cfg.Lock.KeyPrefix,
			TTL:           cfg.Lock.TTL,
			RetryInterval: cfg.Lock.RetryInterval,
			MaxWait:       cfg.Lock.MaxWait,
		}, log)
	} else {
		locker = lock.NewKeyedMutex()
	}
	log.Info("Order lock ready", zap.String("backend", cfg.Lock.Backend))

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)
	variationRepo := persistence.NewGormVariationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Resolver cache and its invalidation
	resolverCache := cache.NewInMemoryResolverCache(
		cache.WithMaxEntries(cfg.Cart.ResolverCacheSize),
		cache.WithTTL(cfg.Cart.ResolverCacheTTL),
		cache.WithLogger(log),
	)
	defer resolverCache.Close()

	loader := catalogapp.NewMatrixLoader(productRepo, attributeRepo, variationRepo, resolverCache, m)
	invalidationHandler := catalogapp.NewCacheInvalidationHandler(loader)

	if cfg.Cart.InvalidationChannel != "" {
		invalidator := cache.NewRedisInvalidator(redisClient,
			cache.WithChannel(cfg.Cart.InvalidationChannel),
			cache.WithInvalidatorLogger(log),
		)
		invalidationHandler.WithPublisher(invalidator)
		go func() {
			err := invalidator.Subscribe(rootCtx, func(msg cache.InvalidationMessage) {
				cache.Apply(resolverCache, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Resolver cache invalidation subscription stopped", zap.Error(err))
			}
		}()
		defer func() {
			_ = invalidator.Close()
		}()
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(invalidationHandler)
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Application services
	productService := catalogapp.NewProductService(productRepo, attributeRepo, variationRepo)
	productService.SetEventPublisher(eventBus)
	productService.SetInvalidator(invalidationHandler)

	formService := catalogapp.NewAttributeFormService(loader)

	cartService := cartapp.NewCartService(loader, orderRepo, locker,
		order.NewLineConsolidator(cartapp.NewPolicyRegistry(cfg.Cart.IgnoredDataKeys)))
	cartService.SetEventPublisher(eventBus)
	cartService.SetSaleValidator(catalogapp.NewProductSaleValidator(productRepo, variationRepo))
	cartService.SetMetrics(m)

	flow, err := checkoutFlow(cfg.Cart.CheckoutFlow)
	if err != nil {
		log.Fatal("Invalid checkout flow", zap.Error(err))
	}
	checkoutService := checkoutapp.NewCheckoutService(flow, orderRepo, locker)
	checkoutService.SetEventPublisher(eventBus)
	checkoutService.SetMetrics(m)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.AllowOrigins

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracing.ServiceName = cfg.Telemetry.ServiceName
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		Metrics:        m,
		Tracing:        tracing,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return db.DB.WithContext(ctx).Exec("SELECT 1").Error },
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks...)
	engine.GET("/healthz", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.NewCatalogHandler(productService).Routes(),
		handler.NewAttributeFormHandler(formService).Routes(),
		handler.CartRoutes(handler.NewCartHandler(cartService), handler.NewCheckoutHandler(checkoutService)),
		systemHandler.Routes(),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// checkoutFlow returns the configured checkout flow; empty selects the default
func checkoutFlow(id string) (*checkout.Flow, error) {
	if id == "" || id == checkout.DefaultFlowID {
		return checkout.DefaultFlow(), nil
	}
	return nil, errors.New("unknown checkout flow " + id)
}
