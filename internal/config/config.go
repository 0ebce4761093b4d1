package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries all runtime settings, read once from the environment.
type Config struct {
	Env      string
	HTTPPort string

	// AdminToken is the shared secret gating the admin API. Session-based
	// auth lives in front of this service, the core only needs the boolean.
	AdminToken string

	// DBDriver is postgres or sqlite. The sqlite path doubles as the dev
	// default so the service runs without any infrastructure.
	DBDriver   string
	DBDSN      string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	Compression   string

	ResolveTimeout time.Duration
	ClickBuffer    int
	ClickRetention time.Duration

	KafkaBrokers string
	KafkaTopic   string

	PruneSchedule   string
	RefreshSchedule string
}

func LoadConfig() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		HTTPPort:        getEnv("HTTP_PORT", "4040"),
		AdminToken:      getEnv("ADMIN_TOKEN", ""),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DBDSN:           getEnv("DB_DSN", ""),
		SQLitePath:      getEnv("SQLITE_PATH", ".data/shortpage.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		CacheTTL:        getDuration("CACHE_TTL", time.Hour),
		Compression:     getEnv("CACHE_COMPRESSION", "none"),
		ResolveTimeout:  getDuration("RESOLVE_TIMEOUT", 5*time.Second),
		ClickBuffer:     getInt("CLICK_BUFFER", 1024),
		ClickRetention:  getDuration("CLICK_RETENTION", 90*24*time.Hour),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", ""),
		PruneSchedule:   getEnv("PRUNE_SCHEDULE", "@daily"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@hourly"),
	}
}

// GetDb opens the configured database. Startup cannot proceed without one,
// a connection failure is fatal.
func GetDb(cnf *Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	gormConfig := &gorm.Config{TranslateError: true}

	switch cnf.DBDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cnf.DBDSN), gormConfig)
	default:
		_ = os.MkdirAll(filepath.Dir(cnf.SQLitePath), os.ModePerm)
		db, err = gorm.Open(sqlite.Open(cnf.SQLitePath), gormConfig)
	}

	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	return db
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
