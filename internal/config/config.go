package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseDriver      string   `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL         string   `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"`
	DatabaseReplicaURLs []string `env:"DATABASE_REPLICA_URLS" envSeparator:","`

	SecretAccessKey string        `env:"SECRET_ACCESS_KEY" envDefault:"secret_key_change_me"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	SnowflakeNode   int64         `env:"SNOWFLAKE_NODE" envDefault:"1"`

	RedisAddr    string   `env:"REDIS_ADDR"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"inkwell.events"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"inkwell"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	NotifyQueueSize int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"1000"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
