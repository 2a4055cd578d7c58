package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
}

// BackendConfig locates the management backend the console fronts.
type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8081"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

// SessionConfig controls console session storage and the session cookie.
type SessionConfig struct {
	// Store selects the session store backend: "redis" or "memory".
	Store        string        `env:"SESSION_STORE, default=memory"`
	TTL          time.Duration `env:"SESSION_TTL,   default=168h"`
	CookieName   string        `env:"COOKIE_NAME,   default=console_session"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
