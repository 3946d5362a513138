package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"HarvestTrail"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"harvesttrail"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Pusher struct {
		AppID   string `envconfig:"PUSHER_APP_ID"`
		Key     string `envconfig:"PUSHER_KEY"`
		Secret  string `envconfig:"PUSHER_SECRET"`
		Cluster string `envconfig:"PUSHER_CLUSTER" default:"ap2"`
	}

	Token struct {
		Secret string        `envconfig:"TOKEN_SECRET"`
		TTL    time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}

	return &cfg, nil
}
