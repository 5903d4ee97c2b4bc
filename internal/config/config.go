// Package config содержит логику чтения конфигурации шлюза SAN.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultCacheTTL   = 5 * time.Minute
	defaultAPITimeout = 10 * time.Second
	defaultEnvFile    = ".env"
)

// Config содержит параметры конфигурации шлюза SAN.
type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS"`
	DatabaseURI   string        `env:"DATABASE_URI"`
	SanAPIAddress string        `env:"SAN_API_ADDRESS"`
	SessionSecret string        `env:"SESSION_SECRET"`
	CacheTTL      time.Duration `env:"CACHE_TTL"`
	APITimeout    time.Duration `env:"API_TIMEOUT"`
}

// loadEnvFile подгружает переменные из файла ENV_FILE (по умолчанию .env).
// Уже заданные переменные окружения не перезаписываются.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for session credentials")
	flag.StringVar(&cfg.SanAPIAddress, "r", "", "SAN REST API address")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")
	flag.DurationVar(&cfg.CacheTTL, "t", defaultCacheTTL, "query cache TTL")
	flag.DurationVar(&cfg.APITimeout, "w", defaultAPITimeout, "SAN API request timeout")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.SanAPIAddress != "" {
		cfg.SanAPIAddress = envCfg.SanAPIAddress
	}
	if envCfg.SessionSecret != "" {
		cfg.SessionSecret = envCfg.SessionSecret
	}
	if envCfg.CacheTTL > 0 {
		cfg.CacheTTL = envCfg.CacheTTL
	}
	if envCfg.APITimeout > 0 {
		cfg.APITimeout = envCfg.APITimeout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = defaultAPITimeout
	}

	return cfg, nil
}
