package main

import (
	"context"
	"log"
	"time"

	"shipping-quoter/internal/core/cache"
	"shipping-quoter/internal/core/config"
	"shipping-quoter/internal/core/logger"
	"shipping-quoter/internal/core/server"
	quoteadapter "shipping-quoter/internal/features/quotes/adapters"
	quotehandler "shipping-quoter/internal/features/quotes/handler"
	"shipping-quoter/internal/features/quotes/ports"
	quoteservice "shipping-quoter/internal/features/quotes/service"
	settingsadapter "shipping-quoter/internal/features/settings/adapters"
	settingshandler "shipping-quoter/internal/features/settings/handler"
	settingsservice "shipping-quoter/internal/features/settings/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title Shipping Quoter API
// @version 1.0
// @description This API computes ranked shipping-rate quotes for storefront orders and exposes the administrative shipping settings.
// @contact.name API Support
// @contact.email support@shippingquoter.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize Redis cache and verify reachability
	redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisCache.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		cancel()
		l.Fatal("Redis connection check failed", zap.Error(err))
	}
	cancel()
	l.Info("Redis connection verified")

	// Initialize Settings Store
	settingsRepo := settingsadapter.NewRedisSettingsRepository(redisCache)
	settingsStore := settingsservice.NewSettingsStore(settingsRepo)

	// Initialize Carrier Adapters
	carrierProviders := []ports.CarrierProvider{
		quoteadapter.NewVelocityAdapter(cfg.Carriers.VelocityURL),
		quoteadapter.NewGlobalTransAdapter(cfg.Carriers.GlobalTransURL),
		quoteadapter.NewMercurioAdapter(cfg.Carriers.MercurioURL),
	}

	// Initialize Quote Service & Handlers
	quoteSvc := quoteservice.NewQuoteService(
		settingsStore,
		carrierProviders,
		time.Duration(cfg.Quotes.CarrierTimeoutSeconds)*time.Second,
		cfg.Quotes.MaxParallelCarriers,
	)
	quoteHdl := quotehandler.NewQuoteHandler(quoteSvc)
	settingsHdl := settingshandler.NewSettingsHandler(settingsStore, quoteSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/shipping/rates", quoteHdl.GetRates)
	srv.App.Get("/admin/shipping/settings", settingsHdl.GetSettings)
	srv.App.Put("/admin/shipping/settings", settingsHdl.UpdateSettings)
	srv.App.Post("/admin/shipping/carriers/:name/test", settingsHdl.TestCarrier)

	srv.App.Get("/healthz", func(c *fiber.Ctx) error {
		if err := redisCache.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
