package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Database   DatabaseConfig   `envPrefix:"DATABASE_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	Remember   RememberConfig   `envPrefix:"REMEMBER_"`
	Credential CredentialConfig `envPrefix:"CREDENTIAL_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
	Session    SessionConfig    `envPrefix:"SESSION_"`
	RateLimit  RateLimitConfig  `envPrefix:"RATE_LIMIT_"`
	CSRF       CSRFConfig       `envPrefix:"CSRF_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"rememberable"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"app.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"remember"`
}

// RememberConfig holds the defaults applied to users that do not carry
// their own remember policy.
type RememberConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"true"`
	Store           string        `env:"STORE" envDefault:"database"`
	TTL             time.Duration `env:"TTL" envDefault:"336h"`
	ExtendOnUse     bool          `env:"EXTEND_ON_USE" envDefault:"false"`
	TokenLength     int           `env:"TOKEN_LENGTH" envDefault:"32"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	Scope           string        `env:"SCOPE" envDefault:"user"`
}

// AuthConfig selects the login strategy. Passwordless accepts any known
// login without checking a password.
type AuthConfig struct {
	Passwordless bool `env:"PASSWORDLESS" envDefault:"false"`
	BcryptCost   int  `env:"BCRYPT_COST" envDefault:"12"`
}

type CredentialConfig struct {
	SecretKey      string `env:"SECRET_KEY"`
	Issuer         string `env:"ISSUER" envDefault:"rememberable"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"memory"`
	Name     string        `env:"NAME" envDefault:"session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"24h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

// CSRFConfig guards the state-changing auth endpoints. Clients fetch a token
// from GET /auth/csrf.
type CSRFConfig struct {
	Enabled        bool   `env:"ENABLED" envDefault:"false"`
	TokenLength    uint8  `env:"TOKEN_LENGTH" envDefault:"32"`
	TokenLookup    string `env:"TOKEN_LOOKUP" envDefault:"header:X-CSRF-Token"`
	ContextKey     string `env:"CONTEXT_KEY" envDefault:"csrf"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"_csrf"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieMaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"86400"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"strict"`
}

// RateLimitConfig throttles the login endpoint. CountMode is all, failures
// or success.
type RateLimitConfig struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Store     string        `env:"STORE" envDefault:"memory"`
	Rate      int           `env:"RATE" envDefault:"10"`
	Period    time.Duration `env:"PERIOD" envDefault:"1m"`
	CountMode string        `env:"COUNT_MODE" envDefault:"failures"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validateRememberConfig(&c.Remember); err != nil {
		return err
	}
	if err := validateRateLimitConfig(&c.RateLimit); err != nil {
		return err
	}
	switch c.Session.Store {
	case "memory", "database", "redis":
	default:
		return fmt.Errorf("session store must be: memory, database, or redis (got %q)", c.Session.Store)
	}
	return validateCredentialConfig(&c.Credential)
}

func validateRememberConfig(cfg *RememberConfig) error {
	if cfg.TokenLength < 16 {
		return errors.New("remember token length must be at least 16 bytes")
	}
	if cfg.TokenLength > 128 {
		return errors.New("remember token length cannot exceed 128 bytes")
	}
	if cfg.TTL <= 0 {
		return errors.New("remember ttl must be positive")
	}
	switch cfg.Store {
	case "memory", "database", "redis":
	default:
		return fmt.Errorf("remember store must be: memory, database, or redis (got %q)", cfg.Store)
	}
	if cfg.Scope == "" {
		return errors.New("remember scope cannot be empty")
	}
	return nil
}

func validateRateLimitConfig(cfg *RateLimitConfig) error {
	switch cfg.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("rate limit store must be: memory or redis (got %q)", cfg.Store)
	}
	switch cfg.CountMode {
	case "all", "failures", "success":
	default:
		return fmt.Errorf("rate limit count mode must be: all, failures, or success (got %q)", cfg.CountMode)
	}
	return nil
}

func validateCredentialConfig(cfg *CredentialConfig) error {
	if len(cfg.SecretKey) < 32 {
		return errors.New("credential secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, weak := range []string{"password", "secret", "example", "default", "changeme"} {
		if strings.Contains(lower, weak) {
			return fmt.Errorf("credential secret key contains weak patterns (%s)", weak)
		}
	}
	return nil
}
