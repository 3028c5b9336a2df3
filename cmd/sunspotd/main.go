package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/indigo-pc/sunspot/internal/api"
	"github.com/indigo-pc/sunspot/internal/archive"
	"github.com/indigo-pc/sunspot/internal/auth"
	"github.com/indigo-pc/sunspot/internal/horizons"
	"github.com/indigo-pc/sunspot/internal/metrics"
	"github.com/indigo-pc/sunspot/internal/rawcache"
	"github.com/indigo-pc/sunspot/internal/service"
	"github.com/indigo-pc/sunspot/internal/tracker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("SUNSPOT_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	cacheCfg := loadCacheConfig(logger)
	cache := rawcache.New(cacheCfg.Dir, cacheCfg.MaxFiles)

	var arch *archive.Store
	if path := os.Getenv("SUNSPOT_ARCHIVE_PATH"); path != "" {
		arch, err = archive.Open(path)
		if err != nil {
			logger.Error("opening archive", "path", path, "error", err)
			os.Exit(1)
		}
		defer arch.Close()
		logger.Info("archive enabled", "path", path)
	} else {
		logger.Info("archive disabled, set SUNSPOT_ARCHIVE_PATH to enable")
	}

	client := horizons.NewClient(os.Getenv("SUNSPOT_HORIZONS_ENDPOINT"))
	trk := tracker.New(logger)
	svc := service.New(client, cache, arch, trk, logger)

	// Serve the last fetched table, if one is cached, before the first
	// live refresh.
	if err := svc.WarmLoad(); err != nil {
		logger.Info("no cached ephemeris to warm-load", "error", err)
	}

	srv := api.NewServer(addr, logger, authCfg, svc, arch)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background goroutine to update the table age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := svc.AgeSeconds()
				if age >= 0 {
					metrics.SetTableAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"horizons_endpoint", client.Endpoint(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SUNSPOT_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SUNSPOT_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SUNSPOT_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SUNSPOT_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

type cacheConfig struct {
	Dir      string
	MaxFiles int
}

func loadCacheConfig(logger *slog.Logger) cacheConfig {
	cfg := cacheConfig{
		Dir:      "/tmp/sunspot/horizons",
		MaxFiles: 5,
	}

	if v := os.Getenv("SUNSPOT_CACHE_DIR"); v != "" {
		cfg.Dir = v
	}

	if v := os.Getenv("SUNSPOT_CACHE_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SUNSPOT_CACHE_MAX_FILES value, using default", "value", v, "default", cfg.MaxFiles)
		} else {
			cfg.MaxFiles = n
		}
	}

	logger.Info("cache config", "dir", cfg.Dir, "max_files", cfg.MaxFiles)

	return cfg
}
