package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/fx"
)

type StoreDeps struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Redis     redis.UniversalClient `optional:"true"`
	Logger    *logging.Service      `optional:"true"`
}

func NewStore(cfg *config.Config, client redis.UniversalClient, logger *logging.Service) (Store, error) {
	switch cfg.RateLimit.Store {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis rate limit store requires a redis client")
		}
		return NewRedisStore(client, cfg.Redis.Prefix+":ratelimit", logger), nil
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.RateLimit.Store)
	}
}

// ProvideRateLimitStore builds the configured store and closes it on stop.
func ProvideRateLimitStore(deps StoreDeps) (Store, error) {
	store, err := NewStore(deps.Config, deps.Redis, deps.Logger)
	if err != nil {
		return nil, err
	}

	deps.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

// NewLoginConfig builds the limiter settings for the login endpoint.
func NewLoginConfig(cfg *config.Config, store Store) *Config {
	return &Config{
		Store:     store,
		Rate:      cfg.RateLimit.Rate,
		Period:    cfg.RateLimit.Period,
		CountMode: CountingMode(cfg.RateLimit.CountMode),
	}
}

var Module = fx.Module("ratelimit",
	fx.Provide(ProvideRateLimitStore),
)
