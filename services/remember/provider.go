package remember

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type StoreDeps struct {
	fx.In
	Config *config.Config
	DB     *gorm.DB              `optional:"true"`
	Redis  redis.UniversalClient `optional:"true"`
}

func ProvideStore(deps StoreDeps) (Store, error) {
	switch deps.Config.Remember.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "database":
		if deps.DB == nil {
			return nil, fmt.Errorf("database remember store requires database to be enabled")
		}
		return NewGormStore(deps.DB), nil
	case "redis":
		if deps.Redis == nil {
			return nil, fmt.Errorf("redis remember store requires a redis client")
		}
		return NewRedisStore(deps.Redis, deps.Config.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported remember store: %s", deps.Config.Remember.Store)
	}
}

func ProvideRedisClient(lc fx.Lifecycle, cfg *config.Config) redis.UniversalClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideService(lc fx.Lifecycle, cfg *config.Config, store Store, directory Directory, logger *logging.Service) *Service {
	service := NewService(&cfg.Remember, store, directory, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			service.StartCleanupWorker(workerCtx, cfg.Remember.CleanupInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
	return service
}

// Module expects a Directory to be provided by the application.
var Module = fx.Module("remember",
	fx.Provide(ProvideStore),
	fx.Provide(ProvideService),
)

// RedisModule adds a redis client for the redis-backed store.
var RedisModule = fx.Provide(ProvideRedisClient)
