package rememberme

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberable/services/credential"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"github.com/tech-arch1tect/rememberable/session"
	"github.com/tech-arch1tect/rememberable/strategy"
	"go.uber.org/zap"
)

// UserKey is the echo context key holding the user authenticated for the
// current request.
const UserKey = "remembered_user"

type Config struct {
	Pipeline    *strategy.Pipeline
	Credentials *credential.Service
	Logger      *logging.Service
}

// Middleware restores a login from the remember cookie when the session is
// not authenticated yet. A store outage yields 503 rather than an anonymous
// request.
func Middleware(cfg Config) echo.MiddlewareFunc {
	logger := cfg.Logger.Named("rememberme")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session.IsAuthenticated(c) || cfg.Pipeline == nil || cfg.Credentials == nil {
				return next(c)
			}

			cookie, err := c.Cookie(cfg.Credentials.CookieName())
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := cfg.Credentials.Decode(cookie.Value)
			if err != nil {
				logger.Debug("remember cookie rejected", zap.Error(err))
				c.SetCookie(cfg.Credentials.ExpiredCookie())
				return next(c)
			}

			result, err := cfg.Pipeline.Authenticate(c.Request().Context(), &strategy.Request{
				Remember: &strategy.Credential{UserID: claims.UserID(), Token: claims.Token},
			})
			if err != nil {
				if errors.Is(err, remember.ErrStoreUnavailable) {
					logger.Error("remember store unavailable", zap.Error(err))
					return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication temporarily unavailable")
				}
				return err
			}

			if result.Outcome != strategy.Success {
				if result.ClearRemember {
					c.SetCookie(cfg.Credentials.ExpiredCookie())
				}
				return next(c)
			}

			if err := session.Login(c, userIDOf(result.User, claims.UserID()), result.Strategy); err != nil {
				return err
			}
			c.Set(UserKey, result.User)

			if err := WriteCookie(c, cfg.Credentials, result.Issued); err != nil {
				logger.Error("failed to refresh remember cookie", zap.Error(err))
			}

			logger.Info("session restored from remember cookie", zap.String("user_id", claims.UserID()))
			return next(c)
		}
	}
}

// WriteCookie sets the remember cookie for grant. A nil grant is a no-op.
func WriteCookie(c echo.Context, credentials *credential.Service, grant *strategy.RememberGrant) error {
	if grant == nil {
		return nil
	}

	expiresAt := time.Unix(grant.ExpiresAt, 0)
	value, err := credentials.Encode(grant.UserID, grant.Token, expiresAt)
	if err != nil {
		return err
	}
	c.SetCookie(credentials.Cookie(value, expiresAt))
	return nil
}

func userIDOf(user any, fallback string) string {
	if r, ok := user.(remember.Rememberable); ok {
		return r.RememberID()
	}
	return fallback
}
