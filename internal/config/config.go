package config

import (
	"fmt"
	"log/slog"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string   `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
	PostgresDSN  string   `env:"POSTGRES_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=exercises sslmode=disable" validate:"required"`
	RedisAddr    string   `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092" validate:"min=1,dive,required"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment values", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"log_level", cfg.LogLevel)
	return cfg, nil
}
