package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains server configuration parameters.
type Config struct {
	Port     string   `env:"PORT" envDefault:"8080"`
	BaseURL  string   `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel string   `env:"LOG_LEVEL" envDefault:"info"`
	GinMode  string   `env:"GIN_MODE" envDefault:"release"`
	Database Database `envPrefix:"DATABASE_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
}

// Database contains database connection parameters.
type Database struct {
	Driver       string        `env:"DRIVER" envDefault:"sqlite"`
	DSN          string        `env:"DSN" envDefault:"recipes.db"`
	WaitAttempts uint64        `env:"WAIT_ATTEMPTS" envDefault:"10"`
	WaitInterval time.Duration `env:"WAIT_INTERVAL" envDefault:"1s"`
}

// Admin describes the superuser ensured at startup.
type Admin struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"admin"`
}

// Enabled reports whether a bootstrap superuser was configured.
func (a Admin) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// Load reads an optional .env file from the working directory and then
// parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse loads configuration from environment variables only.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
