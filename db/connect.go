package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"weather-server/confs"
	"weather-server/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens the configured store, caps the pool and makes sure the
// weather tables exist. The connection parameters are used as given.
func Connect(cfg confs.DBConfig) (Database, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.NewGormLogger(log.Writer(), cfg.LogLevel),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(0)

	database := &GormDatabase{DB: db}

	log.Printf("database connection established (driver=%s, max_conns=%d)", database.Dialect(), maxConns)

	if err := Bootstrap(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return database, nil
}

func openDialector(cfg confs.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.Path + "?_foreign_keys=on&_busy_timeout=5000"), nil
	case DriverPostgres, "":
		return postgres.Open(postgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func postgresDSN(cfg confs.DBConfig) string {
	if cfg.URL != "" {
		dsn := cfg.URL
		// Hosted databases expect TLS unless the URL says otherwise
		if !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
		return dsn
	}

	sslMode := "require"
	if cfg.Host == "localhost" || cfg.Host == "127.0.0.1" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Username, cfg.Password, cfg.Name, cfg.Port, sslMode)
}
