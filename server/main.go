package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/image-export/internal/config"
	"github.com/phambaophuc/image-export/internal/http/handlers"
	"github.com/phambaophuc/image-export/internal/http/routes"
	"github.com/phambaophuc/image-export/internal/services/desktop"
	"github.com/phambaophuc/image-export/internal/services/export"
	"github.com/phambaophuc/image-export/internal/services/processor"
	"github.com/phambaophuc/image-export/internal/services/queue"
	"github.com/phambaophuc/image-export/internal/services/schema"
	"github.com/phambaophuc/image-export/internal/services/settings"
	"github.com/phambaophuc/image-export/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis and Supabase are optional; exports run without them.
	store, err := storage.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer store.Close()

	var (
		cache    processor.PreviewCache
		uploader processor.Uploader
		backend  handlers.Storage
	)
	redisUp := redisReachable(ctx, store, logger)
	if redisUp {
		cache = store
		backend = store
	}
	if store.RemoteEnabled() {
		uploader = store
	}

	engine := processor.NewImageProcessor(cfg.Export, uploader, cache, logger)
	sch := schema.New()
	revealer := desktop.NewRevealer(logger)
	registry := export.NewRegistry(engine, sch, revealer, logger)

	var jobQueue handlers.JobQueue
	if redisUp {
		q, err := queue.NewQueueService(cfg, registry, store, logger)
		if err != nil {
			logger.Warn("Failed to initialize queue service", zap.Error(err))
			// Continue without async exports
		} else {
			defer q.Close()
			if err := q.StartWorkers(ctx); err != nil {
				logger.Warn("Failed to start export workers", zap.Error(err))
			} else {
				jobQueue = q
			}
		}
	}

	handler := handlers.NewHandler(handlers.Deps{
		Sessions:  settings.NewStore(logger),
		Schema:    sch,
		Exports:   registry,
		Previewer: engine,
		Storage:   backend,
		Queue:     jobQueue,
		Picker:    desktop.NewFolderPicker(logger),
		Revealer:  revealer,
		Logger:    logger,
	})

	router := routes.NewRouter(handler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func redisReachable(ctx context.Context, store *storage.StorageService, logger *zap.Logger) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("Redis unavailable, preview cache and async exports disabled", zap.Error(err))
		return false
	}
	return true
}
