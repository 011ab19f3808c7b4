package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, resolved once at startup.
type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// DBType is "sqlite" or "postgres". SQLitePath is used for sqlite,
	// DatabaseURL for postgres.
	DBType      string
	SQLitePath  string
	DatabaseURL string

	// ReconcileInterval controls how often the background sweep repairs
	// missing completions and backfills definitions.
	ReconcileInterval time.Duration
}

// Load reads configuration from the environment, honoring a .env file when
// one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress:     getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout:   getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBType:            getenvDefault("DB_TYPE", "sqlite"),
		SQLitePath:        getenvDefault("SQLITE_PATH", "data/luna.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ReconcileInterval: getDurationDefault("RECONCILE_INTERVAL", 15*time.Minute),
	}

	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL is required when DB_TYPE=postgres")
	}
	return cfg
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}
