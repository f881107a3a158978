package database

import (
	"fmt"
	"os"
	"path/filepath"

	"mindcare-go/internal/config"
	logging "mindcare-go/internal/logging"
	"mindcare-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and runs migrations.
// Driver "postgres" uses the host settings; anything else opens the sqlite
// file at Path, where ":memory:" gives a throwaway database.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewStoreLogger(log, cfg.SlowQuery).LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.", zap.String("driver", driverName(cfg)))

	if driverName(cfg) == "sqlite" && cfg.Path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully.")
	return db, nil
}

func driverName(cfg config.DatabaseConfig) string {
	if cfg.Driver == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	if cfg.Driver == "postgres" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port)
		return postgres.Open(dsn), nil
	}

	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return sqlite.Open(path), nil
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.KVEntry{},
		&models.FollowUp{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	dueIndex := `CREATE INDEX IF NOT EXISTS idx_follow_ups_due ON follow_ups (delivered, scheduled_for);`
	if err := db.Exec(dueIndex).Error; err != nil {
		return fmt.Errorf("failed to create custom index on follow_ups table: %w", err)
	}
	return nil
}
