package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"

	"inkwell/internal/config"
	"inkwell/internal/models"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Open connects to the primary, registers read replicas and the tracing
// plugin, and migrates the schema.
func Open(cfg config.Config) (*gorm.DB, error) {
	primary, err := dialector(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(primary, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connection established", "driver", cfg.DatabaseDriver)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if len(cfg.DatabaseReplicaURLs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.DatabaseReplicaURLs))
		for _, dsn := range cfg.DatabaseReplicaURLs {
			d, _ := dialector(cfg.DatabaseDriver, dsn)
			replicas = append(replicas, d)
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
		slog.Info("read replicas registered", "count", len(replicas))
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("tracing plugin: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}
