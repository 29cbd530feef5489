package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// StoreMode selects the persistence backend.
type StoreMode string

const (
	StorePostgres StoreMode = "postgres"
	StoreJSON     StoreMode = "json"
)

type Config struct {
	HTTP  HTTPConfig
	Auth  AuthConfig
	Store StoreConfig
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitBurst  int
	RateLimitPerSec int
}

type AuthConfig struct {
	// Secret signs every token; the process refuses to start without it.
	Secret   string
	TokenTTL time.Duration
	// DemoLogin enables the password-bypassing demo path. Keep it off in
	// deployments holding real credentials.
	DemoLogin bool
}

type StoreConfig struct {
	Mode StoreMode
	// PGDSN is required in postgres mode.
	PGDSN string
	// DataDir holds the per-collection JSON files in json mode.
	DataDir string
}

// Load reads configuration from BUILDSMART_* environment variables and
// validates it.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("BUILDSMART_HTTP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("BUILDSMART_HTTP_READ_TIMEOUT_SEC", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("BUILDSMART_HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			IdleTimeout:     time.Duration(getEnvInt("BUILDSMART_HTTP_IDLE_TIMEOUT_SEC", 60)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("BUILDSMART_HTTP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
			RateLimitBurst:  getEnvInt("BUILDSMART_RATE_LIMIT_BURST", 20),
			RateLimitPerSec: getEnvInt("BUILDSMART_RATE_LIMIT_PER_SEC", 10),
		},
		Auth: AuthConfig{
			Secret:    getEnv("BUILDSMART_AUTH_SECRET", ""),
			TokenTTL:  time.Duration(getEnvInt("BUILDSMART_TOKEN_TTL_HOURS", 7*24)) * time.Hour,
			DemoLogin: getEnvBool("BUILDSMART_DEMO_LOGIN", false),
		},
		Store: StoreConfig{
			Mode:    StoreMode(getEnv("BUILDSMART_STORE", string(StoreJSON))),
			PGDSN:   getEnv("BUILDSMART_PG_DSN", ""),
			DataDir: getEnv("BUILDSMART_DATA_DIR", "./data"),
		},
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("BUILDSMART_HTTP_ADDR must not be empty")
	}
	if cfg.Auth.Secret == "" {
		return Config{}, fmt.Errorf("BUILDSMART_AUTH_SECRET is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("BUILDSMART_TOKEN_TTL_HOURS must be > 0")
	}
	switch cfg.Store.Mode {
	case StorePostgres:
		if cfg.Store.PGDSN == "" {
			return Config{}, fmt.Errorf("BUILDSMART_PG_DSN is required in postgres mode")
		}
	case StoreJSON:
		if cfg.Store.DataDir == "" {
			return Config{}, fmt.Errorf("BUILDSMART_DATA_DIR must not be empty in json mode")
		}
	default:
		return Config{}, fmt.Errorf("BUILDSMART_STORE must be %q or %q", StorePostgres, StoreJSON)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
