package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cineflex-backend/internal/config"
	"cineflex-backend/internal/database"
	"cineflex-backend/internal/handlers"
	"cineflex-backend/internal/logging"
	"cineflex-backend/internal/middleware"
	"cineflex-backend/internal/persist"
	"cineflex-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Schema migrations need a direct Postgres connection; everything else
	// goes through PostgREST and the storage API.
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Warn("failed to initialize migrator", zap.Error(err))
		} else {
			defer migrator.Close()
			if err := migrator.Run(); err != nil {
				logger.Warn("migration failed", zap.Error(err))
			} else {
				logger.Info("migrations completed")
			}
		}
	} else {
		logger.Warn("DATABASE_URL not set, skipping migrations")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Fatal("failed to initialize supabase client", zap.Error(err))
	}

	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	rowStore := supabase.NewRowStore(supabaseClient)
	realtimeClient := supabase.NewRealtimeClient(supabaseClient)

	// Persistence engine: blob materialization, relational sync, GC, wrapped
	// in the per-project coalescing scheduler.
	paths := storageClient.Paths()
	blobs := persist.NewBlobPersister(storageClient, paths, logger)
	scanner := persist.NewReachabilityScanner(paths)
	gc := persist.NewGarbageCollector(storageClient, scanner, cfg.StorageListPageSize, cfg.GCDeleteBatchSize, logger)
	relational := persist.NewRelationalSync(rowStore, logger)
	service := persist.NewService(blobs, relational, gc, rowStore, storageClient, realtimeClient, cfg.StorageListPageSize, logger)
	scheduler := persist.NewScheduler(service.SaveProjectData, time.Duration(cfg.SaveDebounceMs)*time.Millisecond, logger)

	projectsHandler := handlers.NewProjectsHandler(service, scheduler)
	charactersHandler := handlers.NewCharactersHandler(service)

	router := gin.Default()
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.PUT("/projects/:project_id", projectsHandler.SaveProject)
	api.POST("/projects/:project_id/save", projectsHandler.SaveProjectNow)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.GET("/projects/:project_id/assets", projectsHandler.ListAssets)

	api.GET("/projects/:project_id/characters", charactersHandler.GetCharacters)
	api.PUT("/projects/:project_id/characters", charactersHandler.SaveCharacters)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
