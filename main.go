package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"mindcare-go/internal/config"
	"mindcare-go/internal/crisis"
	"mindcare-go/internal/database"
	logger "mindcare-go/internal/logging"
	"mindcare-go/internal/models"
	"mindcare-go/internal/platform"
	"mindcare-go/internal/repository"
	"mindcare-go/internal/router"
	"mindcare-go/internal/scoring"
	"mindcare-go/internal/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	root := os.Getenv("MINDCARE_ROOT")
	if root == "" {
		root = "."
	}

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("failed to load .env: " + err.Error())
	}

	bootLog, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}

	// Initialize Configuration
	cfg, err := config.Init(root, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Logger
	log, err := logger.Init(cfg.Logging)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	catalog, err := loadCatalog(filepath.Join(root, cfg.Crisis.CatalogPath), log)
	if err != nil {
		log.Fatal("Failed to load crisis catalog", zap.Error(err))
	}

	// Initialize Database
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	var store crisis.KeyValueStore
	switch cfg.Crisis.Store {
	case "redis":
		rs, err := repository.NewRedisStore(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect crisis log store", zap.Error(err))
		}
		defer rs.Close()
		store = rs
	default:
		store = repository.NewKVStore(db)
	}
	log.Info("Crisis log store ready", zap.String("store", cfg.Crisis.Store))

	scheduler := services.NewScheduler(log, repository.NewFollowUpRepository(db), services.NewLogReminderSender(log))
	if err := scheduler.Start(cfg.FollowUp.PollSpec); err != nil {
		log.Fatal("Failed to start follow-up scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	manager, err := crisis.NewManager(crisis.Config{
		Catalog:   catalog,
		Region:    cfg.Crisis.Region,
		Presenter: platform.NewPresenter(log),
		Launcher:  platform.NewLauncher(log),
		Haptics:   platform.NewHaptics(log),
		Store:     store,
		FollowUps: scheduler,
		Delays: crisis.FollowUpDelays{
			High:    cfg.FollowUp.HighAfter,
			Medium:  cfg.FollowUp.MediumAfter,
			Default: cfg.FollowUp.DefaultAfter,
		},
		LogKey: cfg.Crisis.LogKey,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create crisis manager", zap.Error(err))
	}

	// Setup router, passing the logger to it
	r := router.Setup(log, func() config.ServerConfig { return config.Get().Server }, scoring.New(), manager)

	// Start the Gin server
	port := ":" + cfg.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}

// loadCatalog reads the crisis catalog, using the built-in catalog when the file is missing.
func loadCatalog(path string, log *zap.Logger) (*models.CrisisCatalog, error) {
	catalog, err := models.LoadCrisisCatalog(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("Crisis catalog not found, using built-in catalog", zap.String("path", path))
		return models.DefaultCrisisCatalog(), nil
	}
	if err != nil {
		return nil, err
	}
	log.Info("Crisis catalog loaded", zap.String("path", path), zap.Int("resources", len(catalog.Resources)))
	return catalog, nil
}
