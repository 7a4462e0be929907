package strategy

import (
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"go.uber.org/fx"
)

// ProvidePipeline orders the remember strategy ahead of the login strategy
// and issues tokens after logins that ask to be remembered.
func ProvidePipeline(cfg *config.Config, service *remember.Service, authenticator Authenticator, logger *logging.Service) *Pipeline {
	login := NewPasswordStrategy(authenticator)
	if cfg.Auth.Passwordless {
		login = NewPasswordlessStrategy(authenticator)
	}

	pipeline := NewPipeline(logger, NewRememberStrategy(service), login)
	pipeline.AfterSuccess(RememberHook(service))

	logger.Named("strategy").Info("authentication pipeline configured")
	return pipeline
}

var Module = fx.Module("strategy",
	fx.Provide(ProvidePipeline),
)
