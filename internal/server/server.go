// Package server boots the billmate HTTP process: config, database,
// cache, storage, realtime hub, background queue, and the API routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/billmate/app/jobs"
	"github.com/shashiranjanraj/billmate/app/realtime"
	"github.com/shashiranjanraj/billmate/app/routes"
	"github.com/shashiranjanraj/billmate/config"
	"github.com/shashiranjanraj/billmate/pkg/cache"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/queue"
	"github.com/shashiranjanraj/billmate/pkg/router"
	"github.com/shashiranjanraj/billmate/pkg/storage"
)

// Start boots every subsystem and serves until SIGINT/SIGTERM, then shuts
// down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	if err := database.Connect(); err != nil {
		return err
	}

	// Redis is optional in dev: cache and queue degrade gracefully to
	// in-process fallbacks.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	} else {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.UseDB(database.DB)

	if uri := config.MongoURI(); uri != "" {
		mh, err := logger.EnableMongo(uri)
		if err != nil {
			logger.Warn("server: mongo audit log unavailable", "error", err)
		} else {
			defer mh.Close()
		}
	}

	storage.Connect()
	realtime.Boot()
	jobs.RegisterAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// In-process workers handle queued jobs (low-stock alerts) unless a
	// dedicated `billmate queue:work` process is running.
	queue.StartWorkers(ctx, 2)

	r := router.New()
	routes.RegisterAPI(r)

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
