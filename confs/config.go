package confs

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DBConfig carries the connection parameters handed to db.Connect.
// The values are passed through as-is; nothing checks their shape.
type DBConfig struct {
	Driver   string // postgres | sqlite
	URL      string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Path     string // sqlite database file
	LogLevel string // silent | error | warn | info
	MaxConns int
}

type LogConfig struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Config struct {
	DB                  DBConfig
	Log                 LogConfig
	HTTPAddr            string
	AggregationSchedule string
	SensorRateLimit     float64
	SensorRateBurst     int
}

// LoadConfig loads environment variables from a .env file if present
// and builds the application configuration from them.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	logMaxSize, err := strconv.Atoi(getEnv("LOG_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_SIZE_MB: %w", err)
	}
	logMaxBackups, err := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_BACKUPS: %w", err)
	}
	logMaxAge, err := strconv.Atoi(getEnv("LOG_MAX_AGE_DAYS", "28"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_AGE_DAYS: %w", err)
	}
	logCompress, err := strconv.ParseBool(getEnv("LOG_COMPRESS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_COMPRESS: %w", err)
	}
	rateLimit, err := strconv.ParseFloat(getEnv("SENSOR_RATE_LIMIT", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SENSOR_RATE_LIMIT: %w", err)
	}
	rateBurst, err := strconv.Atoi(getEnv("SENSOR_RATE_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SENSOR_RATE_BURST: %w", err)
	}

	return &Config{
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DB_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "weather"),
			Path:     getEnv("DB_PATH", "./data/weather.db"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
			MaxConns: maxConns,
		},
		Log: LogConfig{
			FilePath:   getEnv("LOG_FILE_PATH", ""),
			MaxSizeMB:  logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAgeDays: logMaxAge,
			Compress:   logCompress,
		},
		HTTPAddr:            getEnv("HTTP_ADDR", "0.0.0.0:3536"),
		AggregationSchedule: getEnv("AGGREGATION_SCHEDULE", ""),
		SensorRateLimit:     rateLimit,
		SensorRateBurst:     rateBurst,
	}, nil
}

// getEnv returns the value of key, or fallback when it is unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
