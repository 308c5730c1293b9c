package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	procapp "github.com/sparesuite/backend/internal/application/procurement"
	reportapp "github.com/sparesuite/backend/internal/application/report"
	"github.com/sparesuite/backend/internal/infrastructure/cache"
	"github.com/sparesuite/backend/internal/infrastructure/config"
	"github.com/sparesuite/backend/internal/infrastructure/logger"
	"github.com/sparesuite/backend/internal/infrastructure/persistence"
	"github.com/sparesuite/backend/internal/interfaces/http/handler"
	"github.com/sparesuite/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewForEnvironment("development").Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	reportRepo := persistence.NewGormPurchaseReportRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)

	orderService := procapp.NewPurchaseOrderService(orderRepo)
	orderService.SetLogger(log)
	orderService.SetSupplierRepository(supplierRepo)
	orderService.SetStockUpdater(stockRepo)

	analyticsService := reportapp.NewAnalyticsService(reportRepo)
	exportService := reportapp.NewExportService(orderRepo, cfg.Export.Dir, cfg.Export.BaseURL)

	if cfg.Redis.Enabled {
		statsCache, err := cache.NewRedisStatsCache(cfg.Redis, log)
		if err != nil {
			log.Warn("stats cache unavailable, serving analytics uncached", zap.Error(err))
		} else {
			defer func() { _ = statsCache.Close() }()
			analyticsService.SetCache(statsCache)
			orderService.SetStatsInvalidator(statsCache)
		}
	}

	engine := router.New(cfg, log, router.Handlers{
		Orders:    handler.NewPurchaseOrderHandler(orderService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, exportService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
