// Package config reads the server settings from the environment (and an optional .env file)
// and the rule presets from YAML.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/joho/godotenv"
)

type DBConfig struct {
	User     string
	Addr     string
	Password string
	Name     string
}

type Config struct {
	HTTPAddr    string
	SocketAddr  string
	DB          DBConfig
	RedisURL    string
	JWTSecret   string
	CORSOrigins []string
	LockTTL     time.Duration
	RulesPath   string
	JournalPath string
	LogLevel    string
	LogFormat   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:   getenv("HTTP_ADDR", ":4101"),
		SocketAddr: getenv("SOCKET_ADDR", ":8000"),
		DB: DBConfig{
			User:     os.Getenv("DB_USER"),
			Addr:     getenv("DB_ADDR", "localhost:5432"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME", "monopoly"),
		},
		RedisURL:    getenv("REDIS_URL", "localhost:6379"),
		JWTSecret:   getenv("JWT_SECRET", "secret"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		LockTTL:     time.Duration(pkg.Atoi(os.Getenv("LOCK_TTL_MS"), 5000)) * time.Millisecond,
		RulesPath:   os.Getenv("RULES_PATH"),
		JournalPath: os.Getenv("JOURNAL_PATH"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
