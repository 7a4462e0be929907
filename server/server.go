package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	configureTrustedProxies(e, cfg.Server.TrustedProxies, logger)

	e.Use(middleware.Recover())
	if logger != nil {
		e.Use(logging.RequestLogger(logger, "/healthz"))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

func configureTrustedProxies(e *echo.Echo, trustedProxies []string, logger *logging.Service) {
	var options []echo.TrustOption

	for _, proxy := range trustedProxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.Contains(proxy, "/") {
			if ip := net.ParseIP(proxy); ip != nil {
				if ip.To4() != nil {
					proxy += "/32"
				} else {
					proxy += "/128"
				}
			}
		}

		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy", zap.String("proxy", proxy), zap.Error(err))
			continue
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}

	if len(options) == 0 {
		e.IPExtractor = echo.ExtractIPDirect()
		return
	}

	e.IPExtractor = echo.ExtractIPFromXFFHeader(options...)
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.Addr()))

	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) Get(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, m...)
}

func (s *Server) Post(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, m...)
}

func (s *Server) Use(m ...echo.MiddlewareFunc) {
	s.echo.Use(m...)
}

func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, m...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
