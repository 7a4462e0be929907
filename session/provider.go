package session

import (
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
	logger *logging.Service
}

type Options struct {
	Store scs.Store
}

type ManagerDeps struct {
	fx.In
	Config  *config.Config
	Options *Options              `optional:"true"`
	DB      *gorm.DB              `optional:"true"`
	Redis   redis.UniversalClient `optional:"true"`
	Logger  *logging.Service      `optional:"true"`
}

func ProvideSessionManager(cfg *config.Config, opts *Options, db *gorm.DB, client redis.UniversalClient, logger *logging.Service) (*Manager, error) {
	if !cfg.Session.Enabled {
		return nil, nil
	}

	sessionManager := scs.New()

	var store scs.Store
	var err error

	if opts != nil && opts.Store != nil {
		store = opts.Store
	} else {
		switch cfg.Session.Store {
		case "memory":
			store = NewMemoryStore()
		case "database":
			if db == nil {
				return nil, fmt.Errorf("database store requires database to be enabled")
			}
			store, err = NewDatabaseStore(db)
			if err != nil {
				return nil, fmt.Errorf("failed to create database session store: %w", err)
			}
		case "redis":
			if client == nil {
				return nil, fmt.Errorf("redis store requires a redis client")
			}
			store, err = NewRedisStore(client, cfg.Redis.Prefix+":session:")
			if err != nil {
				return nil, fmt.Errorf("failed to create redis session store: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
		}
	}

	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Session.MaxAge
	sessionManager.IdleTimeout = cfg.Session.MaxAge
	sessionManager.Cookie.Name = cfg.Session.Name
	sessionManager.Cookie.Path = cfg.Session.Path
	sessionManager.Cookie.Domain = cfg.Session.Domain
	sessionManager.Cookie.Secure = cfg.Session.Secure
	sessionManager.Cookie.HttpOnly = cfg.Session.HttpOnly

	switch cfg.Session.SameSite {
	case "strict":
		sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	case "none":
		sessionManager.Cookie.SameSite = http.SameSiteNoneMode
	default:
		sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	}

	sessionLogger := logger.Named("session")
	sessionManager.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		sessionLogger.Error("session store failure", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	sessionLogger.Info("session manager configured",
		zap.String("store", cfg.Session.Store),
		zap.Duration("max_age", cfg.Session.MaxAge))

	return &Manager{
		SessionManager: sessionManager,
		config:         cfg.Session,
		logger:         sessionLogger,
	}, nil
}

func provideSessionManagerFx(deps ManagerDeps) (*Manager, error) {
	return ProvideSessionManager(deps.Config, deps.Options, deps.DB, deps.Redis, deps.Logger)
}

var Module = fx.Module("session",
	fx.Provide(provideSessionManagerFx),
)
