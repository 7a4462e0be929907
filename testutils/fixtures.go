package testutils

import (
	"time"

	"github.com/tech-arch1tect/rememberable/config"
)

const TestSecretKey = "k7Qp2Vx9Lm4Rt8Wz1Nc6Hb3Jd5Fg0Ys2Ua7Ie9Ov4"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Log: config.LogConfig{
			Level:  "debug",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Redis: config.RedisConfig{
			Prefix: "remember",
		},
		Remember: config.RememberConfig{
			Enabled:     true,
			Store:       "memory",
			TTL:         14 * 24 * time.Hour,
			ExtendOnUse: false,
			TokenLength: 32,
			Scope:       "user",
		},
		Credential: config.CredentialConfig{
			SecretKey:      TestSecretKey,
			Issuer:         "test-issuer",
			CookieSecure:   false,
			CookieSameSite: "lax",
		},
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		RateLimit: config.RateLimitConfig{
			Enabled:   true,
			Store:     "memory",
			Rate:      5,
			Period:    time.Minute,
			CountMode: "failures",
		},
	}
}

var TestPasswords = struct {
	Valid string
	Wrong string
}{
	Valid: "Password123",
	Wrong: "NotThePassword1",
}
