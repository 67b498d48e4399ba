package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	appplanning "github.com/mrpcore/backend/internal/application/planning"
	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/infrastructure/auth"
	"github.com/mrpcore/backend/internal/infrastructure/cache"
	"github.com/mrpcore/backend/internal/infrastructure/config"
	"github.com/mrpcore/backend/internal/infrastructure/event"
	"github.com/mrpcore/backend/internal/infrastructure/logger"
	"github.com/mrpcore/backend/internal/infrastructure/notify"
	"github.com/mrpcore/backend/internal/infrastructure/persistence"
	"github.com/mrpcore/backend/internal/infrastructure/telemetry"
	"github.com/mrpcore/backend/internal/interfaces/http/handler"
	"github.com/mrpcore/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MRP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Repositories
	poRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	historyRepo := persistence.NewGormApprovalHistoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	supplierProductRepo := persistence.NewGormSupplierProductRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	taxCodeRepo := persistence.NewGormTaxCodeRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	identityRepo := persistence.NewGormIdentityRepository(db.DB)

	// Approval settings are read on every submit; cache them in Redis when it
	// is reachable and fall back to an in-process cache when it is not.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var settings planning.SettingsProvider
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory settings cache", zap.Error(err))
		settings = cache.NewInMemorySettingsCache(settingsRepo,
			cache.WithInMemorySettingsLogger(log))
		_ = redisClient.Close()
		redisClient = nil
	} else {
		settings = cache.NewRedisSettingsCache(redisClient, settingsRepo,
			cache.WithSettingsLogger(log))
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	cancelPing()
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	// Event bus with metric collection subscribed to order lifecycle events
	bus := event.NewBus(log)
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	meter := otel.Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewPlanningMetrics(meter, log)
	if err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
	} else {
		bus.Subscribe(metrics)
	}

	// Application services
	notifier := notify.NewInboxNotifier(db.DB, log)
	priceResolver := appplanning.NewPriceResolver(productRepo, supplierProductRepo)
	poService := appplanning.NewPurchaseOrderService(
		poRepo, historyRepo, supplierRepo, taxCodeRepo, receiptRepo,
		settings, identityRepo, notifier, priceResolver, bus, log,
	)
	bulkService := appplanning.NewBulkService(
		poRepo, historyRepo, productRepo, supplierRepo, supplierProductRepo,
		warehouseRepo, taxCodeRepo, receiptRepo, identityRepo, bus, log,
	)

	// HTTP layer
	jwtService := auth.NewJWTService(cfg.JWT)
	engine, err := router.New(cfg, jwtService, log, router.Handlers{
		PurchaseOrders: handler.NewPurchaseOrderHandler(poService),
		Bulk:           handler.NewBulkHandler(bulkService),
		Notifications:  handler.NewNotificationHandler(notifier),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	if err := bus.Stop(ctx); err != nil {
		log.Error("Event bus stop failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
