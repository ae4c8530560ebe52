package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aldoetobex/council-case-backend/config"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// Open connects to postgres (DATABASE_URL) or sqlite (SQLITE_PATH).
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on&_journal_mode=WAL")
	case "postgres", "":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	logger.Log.Info("database connected", zap.String("driver", dialector.Name()))
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
