package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppEnv          = "dev"
	defaultLogLevel        = "info"
	defaultHTTPPort        = 8080
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	AppEnv   string
	LogLevel string

	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	var errs []error

	cfg := Config{
		AppEnv:   getString(getenv, "APP_ENV", defaultAppEnv),
		LogLevel: getString(getenv, "LOG_LEVEL", defaultLogLevel),
		Server: ServerConfig{
			Port:            getInt(getenv, "HTTP_PORT", defaultHTTPPort, &errs),
			ReadTimeout:     getDuration(getenv, "HTTP_READ_TIMEOUT", defaultReadTimeout, &errs),
			WriteTimeout:    getDuration(getenv, "HTTP_WRITE_TIMEOUT", defaultWriteTimeout, &errs),
			IdleTimeout:     getDuration(getenv, "HTTP_IDLE_TIMEOUT", defaultIdleTimeout, &errs),
			ShutdownTimeout: getDuration(getenv, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &errs),
		},
		Database: DatabaseConfig{
			URL: getString(getenv, "DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getString(getenv, "JWT_SECRET", ""),
		},
	}

	if cfg.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT[%d] is out of range", cfg.Server.Port))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

func getString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(getenv func(string) string, key string, def int, errs *[]error) int {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not an integer", key, v))
		return def
	}

	return n
}

func getDuration(getenv func(string) string, key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not a positive duration", key, v))
		return def
	}

	return d
}
