package csrf

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/rememberable/config"
)

func Middleware(cfg *config.CSRFConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	var sameSite http.SameSite
	switch cfg.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "lax":
		sameSite = http.SameSiteLaxMode
	case "none":
		sameSite = http.SameSiteNoneMode
	default:
		sameSite = http.SameSiteDefaultMode
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLength:    cfg.TokenLength,
		TokenLookup:    cfg.TokenLookup,
		ContextKey:     contextKey(cfg),
		CookieName:     cfg.CookieName,
		CookieDomain:   cfg.CookieDomain,
		CookiePath:     cfg.CookiePath,
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: cfg.CookieHTTPOnly,
		CookieSameSite: sameSite,
	})
}

func contextKey(cfg *config.CSRFConfig) string {
	if cfg.ContextKey == "" {
		return "csrf"
	}
	return cfg.ContextKey
}

// GetToken returns the token the middleware stored for this request, or ""
// when protection is off.
func GetToken(c echo.Context, cfg *config.CSRFConfig) string {
	if token, ok := c.Get(contextKey(cfg)).(string); ok {
		return token
	}
	return ""
}

// TokenHandler hands the current token to clients that cannot read the
// cookie.
func TokenHandler(cfg *config.CSRFConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"csrf_token": GetToken(c, cfg)})
	}
}
