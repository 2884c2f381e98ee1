package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/app"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/config"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/handlers"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/service"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
	"github.com/Lixing-Zhang/shop-admin/backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, sync := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = sync() }()
	slog.SetDefault(log)

	log.Info("starting shop api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"store", cfg.Store,
		"log_level", cfg.LogLevel,
	)

	if err := run(cfg, log); err != nil {
		log.Error("shop api stopped with error", "error", err)
		_ = sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg, log, "shop-api")
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	uploads, err := a.Uploads(upload.TimestampExt)
	if err != nil {
		return err
	}

	shopService := service.NewShopService(a.Stores().Shops, a.Logger())
	shopHandler := handlers.NewShopHandler(shopService, uploads, a.Logger())

	a.API(func(r chi.Router) {
		shopHandler.Routes(r, a.Write())
	})

	return a.Run(ctx)
}
