package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
	// StrategyKey records which strategy established the session.
	StrategyKey = "_strategy"
)

// Login marks the session as authenticated for userID. The session token is
// renewed first so a pre-login token cannot be reused.
func Login(c echo.Context, userID string, strategy string) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	ctx := c.Request().Context()

	if err := manager.RenewToken(ctx); err != nil {
		manager.logger.Error("failed to renew session token", zap.Error(err))
		return err
	}

	manager.Put(ctx, UserIDKey, userID)
	manager.Put(ctx, AuthenticatedKey, true)
	if strategy != "" {
		manager.Put(ctx, StrategyKey, strategy)
	}

	manager.logger.Debug("session authenticated",
		zap.String("user_id", userID),
		zap.String("strategy", strategy))
	return nil
}

func Logout(c echo.Context) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	ctx := c.Request().Context()
	manager.Remove(ctx, UserIDKey)
	manager.Remove(ctx, AuthenticatedKey)
	manager.Remove(ctx, StrategyKey)
	return manager.Destroy(ctx)
}

func GetUserID(c echo.Context) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.GetString(c.Request().Context(), UserIDKey)
}

func GetStrategy(c echo.Context) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.GetString(c.Request().Context(), StrategyKey)
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	return manager.GetBool(c.Request().Context(), AuthenticatedKey)
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}
