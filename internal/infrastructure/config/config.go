package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Authentication backends for the portal's sign-in and registration forms.
const (
	AuthModeAccounts = "accounts"
	AuthModeDemo     = "demo"
)

// Session storage backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Identity resolution strategies.
const (
	IdentityModeStored = "stored"
	IdentityModeLocal  = "local"
	IdentityModeRemote = "remote"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	AuthMode     string `env:"AUTH_MODE,     default=accounts"`
	IdentityMode string `env:"IDENTITY_MODE, default=local"`
	UnknownRole  string `env:"UNKNOWN_ROLE,  default=farmer"`

	Identity IdentityConfig
	Session  SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type IdentityConfig struct {
	BaseURL string        `env:"IDENTITY_BASE_URL"`
	Timeout time.Duration `env:"IDENTITY_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Backend string        `env:"SESSION_BACKEND, default=redis"`
	Prefix  string        `env:"SESSION_PREFIX, default=p3"`
	TTL     time.Duration `env:"SESSION_TTL,    default=0s"`
	Cookie  string        `env:"SCOPE_COOKIE,   default=p3_scope"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=p3_biosecurity"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Development reports whether the service runs outside production.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

// NeedsMongo reports whether the accounts backend has to be served locally.
func (c *Config) NeedsMongo() bool {
	if c.IdentityMode == IdentityModeLocal {
		return true
	}
	return c.AuthMode == AuthModeAccounts && c.IdentityMode == IdentityModeStored
}

func (c *Config) validate() error {
	switch c.AuthMode {
	case AuthModeAccounts, AuthModeDemo:
	default:
		return fmt.Errorf("config: AUTH_MODE must be %q or %q, got %q", AuthModeAccounts, AuthModeDemo, c.AuthMode)
	}

	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("config: SESSION_BACKEND must be %q or %q, got %q", SessionBackendRedis, SessionBackendMemory, c.Session.Backend)
	}

	switch c.IdentityMode {
	case IdentityModeStored, IdentityModeLocal:
	case IdentityModeRemote:
		if c.Identity.BaseURL == "" {
			return fmt.Errorf("config: IDENTITY_BASE_URL is required when IDENTITY_MODE=%s", IdentityModeRemote)
		}
	default:
		return fmt.Errorf("config: unknown IDENTITY_MODE %q", c.IdentityMode)
	}

	if c.NeedsMongo() && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required for the local accounts backend")
	}
	if c.AuthMode == AuthModeDemo && c.IdentityMode != IdentityModeStored {
		return fmt.Errorf("config: demo credentials can only be resolved with IDENTITY_MODE=%s", IdentityModeStored)
	}
	return nil
}
