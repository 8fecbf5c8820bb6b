package config

import (
	"os"
	"path/filepath"
	"time"
)

// BackendMode selects where records are persisted. It is fixed at process
// start and never switched mid-session.
type BackendMode string

const (
	ModeLocal  BackendMode = "local"
	ModeRemote BackendMode = "remote"
)

type Config struct {
	// Backend selection
	Mode BackendMode

	// Local store
	DataDir string

	// Database (remote mode)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT sessions (remote mode)
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// System log retention (remote mode)
	LogRetention time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	mode := ModeLocal
	if getEnv("USE_REMOTE_BACKEND", "false") == "true" {
		mode = ModeRemote
	}

	return &Config{
		Mode: mode,

		DataDir: getEnv("DATA_DIR", defaultDataDir()),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "active_learn_hub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "168h")),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) Remote() bool {
	return c.Mode == ModeRemote
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".alh"
	}
	return filepath.Join(home, ".alh")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}
