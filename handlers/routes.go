package handlers

import (
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/middleware/csrf"
	"github.com/tech-arch1tect/rememberable/middleware/ratelimit"
	"github.com/tech-arch1tect/rememberable/middleware/rememberme"
	"github.com/tech-arch1tect/rememberable/server"
	"github.com/tech-arch1tect/rememberable/services/credential"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/session"
	"github.com/tech-arch1tect/rememberable/strategy"
	"go.uber.org/fx"
)

type RouteDeps struct {
	fx.In
	Config      *config.Config
	Server      *server.Server
	Handler     *AuthHandler
	Pipeline    *strategy.Pipeline
	Credentials *credential.Service
	Sessions    *session.Manager `optional:"true"`
	RateStore   ratelimit.Store  `optional:"true"`
	Logger      *logging.Service `optional:"true"`
}

// RegisterRoutes mounts the auth endpoints. Every request loads the session
// and then tries the remember cookie.
func RegisterRoutes(deps RouteDeps) {
	deps.Server.Use(
		session.Middleware(deps.Sessions),
		rememberme.Middleware(rememberme.Config{
			Pipeline:    deps.Pipeline,
			Credentials: deps.Credentials,
			Logger:      deps.Logger,
		}),
	)

	auth := deps.Server.Group("/auth", csrf.Middleware(&deps.Config.CSRF))
	if deps.Config.CSRF.Enabled {
		auth.GET("/csrf", csrf.TokenHandler(&deps.Config.CSRF))
	}

	login := deps.Handler.Login
	if deps.Config.RateLimit.Enabled {
		auth.POST("/login", login, ratelimit.Middleware(ratelimit.NewLoginConfig(deps.Config, deps.RateStore)))
	} else {
		auth.POST("/login", login)
	}
	auth.POST("/logout", deps.Handler.Logout)
	auth.GET("/me", deps.Handler.Me, session.RequireAuth())
}

var Module = fx.Module("handlers",
	fx.Provide(NewAuthHandler),
	fx.Invoke(RegisterRoutes),
)
