package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	"graphclick/internal/gateway/config"
	"graphclick/internal/gateway/handler"
	"graphclick/internal/gateway/handler/ws"
	"graphclick/internal/gateway/server"
	"graphclick/internal/gateway/service/session"
	"graphclick/internal/logging"
)

type App struct {
	server   *server.Server
	sessions *session.Registry
	stores   *gatewayStores
	log      *zap.Logger
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	a, err := NewWithConfig(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig wires the gateway from an already loaded configuration.
func NewWithConfig(cfg *config.Config, log *zap.Logger) (*App, error) {
	// Dependencies
	stores, err := initStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewRegistry(sessionConfig(cfg), stores.journal, log)
	if err != nil {
		stores.close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}
	if cfg.Click.TargetOrigin == clickgate.WildcardOrigin && cfg.Env != "local" {
		log.Warn("notifications are addressed to any parent origin; set CLICK_TARGET_ORIGIN to restrict them")
	}

	widgetHandler := ws.NewWidgetHandler(sessions, log)
	parentHandler := ws.NewParentHandler(sessions, log)
	debugHandler := handler.NewDebugHandler(stores.journal, sessions, log)

	// Routing & Server
	mux := server.NewMux(widgetHandler, parentHandler, debugHandler)
	srv := server.New(cfg.Port, mux, log)

	return &App{
		server:   srv,
		sessions: sessions,
		stores:   stores,
		log:      log,
	}, nil
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Click: clickgate.Config{
			Window:      cfg.Click.DoubleClickWindow,
			Destination: cfg.Click.TargetOrigin,
		},
		Gate: clickgate.GateConfig{
			Interval:    cfg.Click.PollInterval,
			MaxAttempts: cfg.Click.PollMaxAttempts,
		},
		Capacity: cfg.Session.Capacity,
	}
}

func (a *App) Logger() *zap.Logger {
	return a.log
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.sessions.Close()
	a.stores.close()
	if syncErr := a.log.Sync(); syncErr != nil && !errors.Is(syncErr, context.Canceled) {
		a.log.Debug("logger sync failed", zap.Error(syncErr))
	}
	return err
}
