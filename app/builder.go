package app

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/database"
	"github.com/tech-arch1tect/rememberable/handlers"
	"github.com/tech-arch1tect/rememberable/middleware/ratelimit"
	"github.com/tech-arch1tect/rememberable/server"
	"github.com/tech-arch1tect/rememberable/services/credential"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"github.com/tech-arch1tect/rememberable/session"
	"github.com/tech-arch1tect/rememberable/strategy"
	"github.com/tech-arch1tect/rememberable/users"
	"go.uber.org/fx"
)

type Builder struct {
	config    *config.Config
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *Builder) WithAutoConfig() *Builder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithModels migrates extra application models next to the built-in ones.
func (b *Builder) WithModels(models ...any) *Builder {
	b.models = append(b.models, models...)
	return b
}

func (b *Builder) WithFxOptions(opts ...fx.Option) *Builder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *Builder) addError(msg string) {
	b.errors = append(b.errors, errors.New(msg))
}

func (b *Builder) validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}
	if b.config == nil {
		return errors.New("config is required")
	}
	return b.config.Validate()
}

func (b *Builder) needsRedis() bool {
	return b.config.Remember.Store == "redis" ||
		b.config.Session.Store == "redis" ||
		b.config.RateLimit.Store == "redis"
}

func (b *Builder) buildFxOptions(app *App) []fx.Option {
	models := append([]any{&users.User{}, &remember.Record{}}, b.models...)

	options := []fx.Option{
		fx.NopLogger,
		config.NewProvider(b.config),
		logging.Module,
		fx.Supply(database.WithModels(models...)),
		database.Module,
		users.Module,
		fx.Provide(func(d *users.GormDirectory) strategy.Authenticator { return d }),
		remember.Module,
		credential.Options,
		strategy.Module,
		session.Module,
		ratelimit.Module,
		server.NewProvider(),
		handlers.Module,
	}

	if b.needsRedis() {
		options = append(options, remember.RedisModule)
	}

	options = append(options, b.fxOptions...)
	options = append(options, fx.Populate(&app.logger, &app.db, &app.server, &app.remember))

	return options
}

// Build validates the configuration and constructs every component. Nothing
// is started until Start or Run.
func (b *Builder) Build() (*App, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	app := &App{config: b.config}
	app.fx = fx.New(b.buildFxOptions(app)...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	return app, nil
}
