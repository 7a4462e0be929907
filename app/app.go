package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/server"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx       *fx.App
	config   *config.Config
	logger   *logging.Service
	db       *gorm.DB
	server   *server.Server
	remember *remember.Service
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
	}
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Remember() *remember.Service {
	return a.remember
}
