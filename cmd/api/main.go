package main

import (
	"context"
	"os"

	"timetable-api/config"
	"timetable-api/handlers"
	"timetable-api/logging"
	"timetable-api/models"
	"timetable-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	logger.Info("starting service", "environment", cfg.Environment)
	ctx := context.Background()

	universe, err := models.NewSlotUniverse(cfg.Days, cfg.Periods)
	if err != nil {
		logger.Error("invalid slot configuration", "error", err)
		os.Exit(1)
	}

	snapshot := models.EmptySnapshot()
	if cfg.SnapshotPath != "" {
		snapshot, err = services.LoadSnapshotFile(cfg.SnapshotPath)
		if err != nil {
			logger.Error("failed to load snapshot", "path", cfg.SnapshotPath, "error", err)
			os.Exit(1)
		}
		logger.Info("snapshot loaded", "path", cfg.SnapshotPath, "class_subjects", len(snapshot.Demands()))
	}

	var store services.LectureStore
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := services.NewPostgresLectureStore(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate store", "error", err)
			os.Exit(1)
		}
		store = pg
	default:
		store = services.NewMemoryLectureStore()
	}
	defer store.Close()

	cacheService := services.NewCacheService(cfg.CacheTTL, 2*cfg.CacheTTL)

	ledger, err := services.NewLedger(ctx, universe, snapshot, store, cacheService)
	if err != nil {
		logger.Error("failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	var exporter services.TimetableExporter
	if cfg.MinIOEnabled {
		minioExporter, err := services.NewMinIOExporter(cfg, logger)
		if err != nil {
			logger.Error("failed to initialize MinIO exporter", "error", err)
			os.Exit(1)
		}
		if err := minioExporter.EnsureBucket(ctx); err != nil {
			logger.Warn("export bucket unavailable", "error", err)
		}
		exporter = minioExporter
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Ledger:         ledger,
		Booking:        services.NewBookingService(ledger, logger),
		Timetables:     services.NewTimetableService(ledger, services.NewGenerator(cfg.SearchStepBudget, logger), cfg.GenerationTimeout, logger),
		Exporter:       exporter,
		Cache:          cacheService,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	logger.Info("starting server", "port", cfg.ServerPort, "slots", universe.Size())
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
