// Package config reads service configuration from the environment and holds
// the fixed tuning knobs.
package config

import (
	"os"
	"strings"
	"time"
)

// Config is everything the process reads from the environment. Call
// godotenv.Load before FromEnv to pick up a local .env file.
type Config struct {
	Port         string
	DatabaseURL  string
	RedisAddr    string
	RedisPass    string
	KafkaBrokers []string
	ImportTopic  string
	ImportGroup  string
	PollInterval time.Duration
	DefaultUser  string
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset. KAFKA_BROKERS empty means feed items import inline.
func FromEnv() Config {
	cfg := Config{
		Port:         envOr("PORT", "8080"),
		DatabaseURL:  envOr("DATABASE_URL", "postgres://localhost:5432/stash"),
		RedisAddr:    envOr("REDIS_ADDR", "localhost:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		ImportTopic:  envOr("IMPORT_TOPIC", "stash.import"),
		ImportGroup:  envOr("IMPORT_GROUP", "stash-importer"),
		PollInterval: DefaultPollInterval,
		DefaultUser:  envOr("DEFAULT_USER", "local"),
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
