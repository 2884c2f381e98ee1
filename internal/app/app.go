// Package app holds the application context shared by the three services:
// configuration, logger, store handles, upload storage and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/config"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/database"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/handlers"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/metrics"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/middleware"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/repository"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/seed"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
)

// Stores groups the repositories of every collection
type Stores struct {
	Shops    repository.ShopRepository
	Packages repository.PackageRepository
	Products repository.ProductRepository
}

// App is the explicit replacement for process-wide globals
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	service string
	mongo   *database.Mongo
	stores  Stores
	router  chi.Router
	write   func(http.Handler) http.Handler
}

// New opens the configured store and builds the router with the shared
// middleware, /health and /metrics.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, service string) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     log.With("service", service),
		service: service,
		write:   middleware.APIKeyAuth(cfg.Auth),
	}

	switch cfg.Store {
	case config.StoreMongo:
		m, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
		if err != nil {
			return nil, err
		}
		a.mongo = m
		a.stores = Stores{
			Shops:    repository.NewMongoShopRepository(m.Collection(database.ShopsCollection)),
			Packages: repository.NewMongoPackageRepository(m.Collection(database.PackagesCollection)),
			Products: repository.NewMongoProductRepository(m.Collection(database.ProductsCollection)),
		}
		if len(cfg.Seed.ShopSources) > 0 {
			a.log.Warn("SHOP_SEED_SOURCES is ignored by the mongo store")
		}
		a.log.Info("connected to mongodb", "database", cfg.Mongo.Database)
	case config.StoreMemory:
		shops, err := seed.NewLoader(nil).LoadShops(ctx, cfg.Seed.ShopSources)
		if err != nil {
			return nil, err
		}
		a.stores = Stores{
			Shops:    repository.NewInMemoryShopRepository(shops...),
			Packages: repository.NewInMemoryPackageRepository(),
			Products: repository.NewInMemoryProductRepository(),
		}
		a.log.Warn("using in-memory store, data is lost on restart", "seeded_shops", len(shops))
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store)
	}

	a.router = a.newRouter()
	return a, nil
}

func (a *App) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(a.log))
	if a.cfg.Metrics {
		r.Use(middleware.Metrics(a.service))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var pinger handlers.Pinger
	if a.mongo != nil {
		pinger = a.mongo
	}
	r.Get("/health", handlers.NewHealthHandler(a.service, pinger, a.log).ServeHTTP)

	if a.cfg.Metrics {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}

// Router returns the service router
func (a *App) Router() chi.Router { return a.router }

// Stores returns the repositories backed by the configured store
func (a *App) Stores() Stores { return a.stores }

// Logger returns the service logger
func (a *App) Logger() *slog.Logger { return a.log }

// Write returns the middleware guarding data-modifying routes
func (a *App) Write() func(http.Handler) http.Handler { return a.write }

// API mounts routes under /api
func (a *App) API(fn func(r chi.Router)) {
	a.router.Route("/api", fn)
}

// Uploads prepares the upload directory, serves it under /uploads and
// returns a storage that names files with naming.
func (a *App) Uploads(naming upload.NamingFunc) (*upload.Storage, error) {
	storage := upload.NewStorage(upload.Options{
		Dir:         a.cfg.Upload.Dir,
		MaxFileSize: a.cfg.Upload.MaxFileSize,
		MaxFiles:    a.cfg.Upload.MaxFiles,
		Naming:      naming,
		Filter:      upload.ImageFilter,
		Logger:      a.log,
	})
	if err := storage.EnsureDir(); err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(upload.URLPrefix, "/")
	a.router.Handle(upload.URLPrefix+"*", http.StripPrefix(prefix, storage.FileServer()))

	return storage, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.log.Info("server stopped gracefully")
	return nil
}

// Close releases the store connection
func (a *App) Close(ctx context.Context) error {
	if a.mongo == nil {
		return nil
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
