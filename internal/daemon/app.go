// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/rs/zerolog"
)

// App owns the long-lived runtime pieces around Manager: the config watcher,
// SIGHUP reloads and log level changes after a reload.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder may be nil.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run serves until ctx is cancelled or a listener fails. With a holder it
// also keeps the configuration live while serving.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfgHolder != nil {
		a.followConfig(ctx, g)
	}
	g.Go(func() error {
		if err := a.manager.Start(ctx); err != nil {
			_ = a.manager.Shutdown(context.Background())
			return err
		}
		return nil
	})
	return g.Wait()
}

// followConfig reloads on file changes and on the reload signal, and applies
// every accepted configuration. A watcher that cannot start only costs live
// reload; the loaded configuration keeps serving.
func (a *App) followConfig(ctx context.Context, g *errgroup.Group) {
	accepted := make(chan config.AppConfig, 1)
	a.cfgHolder.RegisterListener(accepted)

	if err := a.cfgHolder.StartWatcher(ctx); err != nil {
		a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("config file changes will not be picked up")
	}
	a.manager.RegisterShutdownHook("config-watcher", func(context.Context) error {
		a.cfgHolder.Stop()
		return nil
	})

	// A nil channel never fires, so a missing reload signal needs no branch below.
	var sig chan os.Signal
	if a.reloadSignal != nil {
		sig = make(chan os.Signal, 1)
		signal.Notify(sig, a.reloadSignal)
	}

	g.Go(func() error {
		if sig != nil {
			defer signal.Stop(sig)
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case cfg := <-accepted:
				a.applyConfig(cfg)
			case s := <-sig:
				a.logger.Info().Str(log.FieldEvent, "config.reload_signal").Str("signal", s.String()).Msg("reloading configuration")
				// Reload logs its own failure; the listener delivers a success.
				_ = a.cfgHolder.Reload(ctx)
			}
		}
	})
}

// applyConfig handles the parts of a reloaded configuration that live
// outside the request path. Handlers read the holder directly.
func (a *App) applyConfig(cfg config.AppConfig) {
	log.SetLevel(cfg.LogLevel)
	a.logger.Info().
		Str(log.FieldEvent, "config.applied").
		Str("logLevel", cfg.LogLevel).
		Msg("applied reloaded configuration")
}
