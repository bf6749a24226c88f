package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/issafronov/redirectmap/internal/app/config"
	"github.com/issafronov/redirectmap/internal/app/handlers"
	"github.com/issafronov/redirectmap/internal/app/service"
	"github.com/issafronov/redirectmap/internal/app/sitemap"
	"github.com/issafronov/redirectmap/internal/app/storage"
	"github.com/issafronov/redirectmap/internal/middleware/auth"
	"github.com/issafronov/redirectmap/internal/middleware/compress"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"github.com/issafronov/redirectmap/internal/middleware/trustedsubnet"
	"github.com/issafronov/redirectmap/internal/pprof"
	"github.com/issafronov/redirectmap/internal/scripts"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

// Router собирает маршруты сервиса
func Router(h *handlers.Handler, cfg *config.Config, trustedNet *net.IPNet) chi.Router {
	router := chi.NewRouter()
	router.Use(logger.RequestLogger)
	router.Use(compress.GzipMiddleware)

	router.Get("/ping", h.Ping)
	router.With(trustedsubnet.TrustedSubnetMiddleware(trustedNet)).Get("/api/internal/stats", h.StatsHandle)

	router.Group(func(r chi.Router) {
		r.Use(auth.AuthorizationMiddleware(cfg.SecretKey))
		r.Post("/api/mappings", h.BuildMappingHandle)
		r.Get("/api/runs/{id}", h.GetRunHandle)
		r.Get("/api/user/runs", h.GetUserRunsHandle)
	})
	return router
}

// newStorage выбирает Postgres при заданном DSN, иначе файловое хранилище
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.DatabaseDSN != "" {
		if err := scripts.RunMigrations(scripts.DefaultMigrationsSource, cfg.DatabaseDSN); err != nil {
			return nil, err
		}
		logger.Log.Info("Using postgres storage")
		return storage.NewPostgresStorage(ctx, cfg.DatabaseDSN)
	}
	logger.Log.Info("Using file storage", zap.String("path", cfg.FileStoragePath))
	return storage.NewFileStorage(cfg.FileStoragePath)
}

func newLoader(cfg *config.Config) *sitemap.Loader {
	return sitemap.NewLoader(resty.New(), &sitemap.Guard{AllowPrivate: cfg.AllowPrivateTargets}, sitemap.Config{
		Timeout:     cfg.RequestTimeout(),
		MaxChildren: cfg.MaxSitemapChildren,
		UserAgent:   cfg.UserAgent,
	})
}

func run() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LoggerLevel); err != nil {
		return err
	}
	defer logger.Sync()

	trustedNet, err := trustedsubnet.ParseSubnet(cfg.TrustedSubnet)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize storage", zap.Error(err))
		return err
	}
	defer store.Close()

	h, err := handlers.NewHandler(cfg, service.NewService(store, newLoader(cfg), cfg))
	if err != nil {
		return err
	}

	if cfg.EnablePprof {
		profiler, err := pprof.Start(cfg.PprofAddress)
		if err != nil {
			return err
		}
		defer profiler.Close()
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           Router(h, cfg, trustedNet),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Running server", zap.String("address", cfg.ServerAddress))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Log.Info("Server stopped")
	return nil
}
