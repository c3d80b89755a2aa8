package config

import (
	"fmt"
	"log/slog"
	"time"

	"ai-notes-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// newGormLogger routes GORM logs into slog keeping their level: slow queries
// as warnings, failed statements as errors.
func newGormLogger(log *slog.Logger) logger.Interface {
	return logger.NewSlogLogger(log.With("component", "gorm"), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// ConnectDB opens the Postgres connection pool and routes GORM logs into slog.
func ConnectDB(cfg DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database connected")
	return db, nil
}

// MigrateAllModels creates or updates the tables for every model when run is true.
func MigrateAllModels(db *gorm.DB, run bool, log *slog.Logger) error {
	if !run {
		log.Info("skipping migration")
		return nil
	}

	err := db.AutoMigrate(
		// define all models here
		&models.User{},
		&models.Session{},
		&models.Note{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database migration completed")
	return nil
}

func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
