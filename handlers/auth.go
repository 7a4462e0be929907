package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberable/middleware/rememberme"
	"github.com/tech-arch1tect/rememberable/services/credential"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"github.com/tech-arch1tect/rememberable/session"
	"github.com/tech-arch1tect/rememberable/strategy"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Login      string `json:"login" form:"login"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type LoginResponse struct {
	UserID     string `json:"user_id"`
	Strategy   string `json:"strategy"`
	Remembered bool   `json:"remembered"`
}

type AuthHandler struct {
	pipeline    *strategy.Pipeline
	remember    *remember.Service
	credentials *credential.Service
	directory   remember.Directory
	logger      *logging.Service
}

func NewAuthHandler(
	pipeline *strategy.Pipeline,
	rememberService *remember.Service,
	credentials *credential.Service,
	directory remember.Directory,
	logger *logging.Service,
) *AuthHandler {
	return &AuthHandler{
		pipeline:    pipeline,
		remember:    rememberService,
		credentials: credentials,
		directory:   directory,
		logger:      logger.Named("handlers"),
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Login == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Login is required")
	}

	result, err := h.pipeline.Authenticate(c.Request().Context(), &strategy.Request{
		Login:      req.Login,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		return h.authError(err)
	}

	if result.Outcome != strategy.Success {
		if result.ClearRemember {
			c.SetCookie(h.credentials.ExpiredCookie())
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	userID := rememberID(result.User)
	if err := session.Login(c, userID, result.Strategy); err != nil {
		return err
	}

	if err := rememberme.WriteCookie(c, h.credentials, result.Issued); err != nil {
		h.logger.Error("failed to write remember cookie", zap.Error(err), zap.String("user_id", userID))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remember login")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		UserID:     userID,
		Strategy:   result.Strategy,
		Remembered: result.Issued != nil,
	})
}

// Logout revokes the remember token of the signed in user, drops the
// remember cookie and destroys the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if userID := session.GetUserID(c); userID != "" {
		if err := h.remember.Revoke(c.Request().Context(), userID); err != nil {
			return h.authError(err)
		}
	}

	c.SetCookie(h.credentials.ExpiredCookie())

	if err := session.Logout(c); err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log out")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user := c.Get(rememberme.UserKey)
	if user == nil {
		found, err := h.directory.Find(c.Request().Context(), session.GetUserID(c))
		if err != nil {
			if errors.Is(err, remember.ErrUserNotFound) {
				if err := session.Logout(c); err != nil {
					h.logger.Error("failed to destroy session of missing user", zap.Error(err))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			h.logger.Error("failed to load current user", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
		}
		user = found
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":     user,
		"strategy": session.GetStrategy(c),
	})
}

func (h *AuthHandler) authError(err error) error {
	if errors.Is(err, remember.ErrStoreUnavailable) {
		h.logger.Error("remember store unavailable", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication temporarily unavailable")
	}
	h.logger.Error("authentication failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Authentication failed")
}

func rememberID(user any) string {
	if r, ok := user.(remember.Rememberable); ok {
		return r.RememberID()
	}
	return ""
}
