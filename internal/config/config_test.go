package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DatabaseDriver != "memory" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("level = %v", cfg.SlogLevel())
	}
	if cfg.KafkaTopic != "inkwell.events" {
		t.Fatalf("default topic = %q", cfg.KafkaTopic)
	}
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	cfg := Config{LogLevel: "loud"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
