// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// Holder holds configuration with atomic reloading capability.
// Request handlers read Current on every request, so a successful reload
// takes effect without a restart.
type Holder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	logger     zerolog.Logger

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewHolder creates a holder seeded with an already loaded configuration.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	path := ""
	if loader != nil {
		path = loader.Path()
	}
	return &Holder{
		current:    initial,
		loader:     loader,
		configPath: path,
		logger:     log.WithComponent("config"),
	}
}

// Current returns the active configuration (thread-safe read).
func (h *Holder) Current() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-runs the loader. On failure the previous configuration stays active.
func (h *Holder) Reload(_ context.Context) error {
	if h.loader == nil {
		return fmt.Errorf("config holder has no loader")
	}
	h.logger.Info().Str(log.FieldEvent, "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		metrics.RecordConfigReload(metrics.OutcomeFailure)
		h.logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.reload_failed").
			Msg("new configuration rejected, keeping current one")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	metrics.RecordConfigReload(metrics.OutcomeSuccess)
	h.notifyListeners(next)
	h.logChanges(prev, next)
	h.logger.Info().
		Str(log.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher watches the configuration file and reloads it after changes
// settle. The parent directory is watched so atomic replacements are seen.
// Without a config file this is a no-op.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(log.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.watchMu.Lock()
	h.watcher = watcher
	h.done = make(chan struct{})
	h.watchMu.Unlock()

	h.logger.Info().
		Str(log.FieldEvent, "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher, h.done)
	return nil
}

// watchLoop runs the debounced reload on its own goroutine, so once Stop has
// waited for done no reload can start or still be running.
func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()
	var pending <-chan time.Time

	target := filepath.Clean(h.configPath)
	for {
		select {
		case <-ctx.Done():
			_ = watcher.Close()
			h.logger.Info().Str(log.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str(log.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			debounce.Reset(reloadDebounce)
			pending = debounce.C

		case <-pending:
			pending = nil
			if err := h.Reload(ctx); err != nil {
				h.logger.Warn().Err(err).Str(log.FieldEvent, "config.auto_reload_failed").Msg("automatic config reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(log.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Watching reports whether the file watcher is running.
func (h *Holder) Watching() bool {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	return h.watcher != nil
}

// Stop closes the watcher and waits for its loop to exit. A change that is
// still inside the debounce window is dropped.
func (h *Holder) Stop() {
	h.watchMu.Lock()
	watcher, done := h.watcher, h.done
	h.watcher, h.done = nil, nil
	h.watchMu.Unlock()

	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}

// RegisterListener registers a channel that receives every successfully
// reloaded configuration. Sends never block; a full channel misses the update.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *Holder) notifyListeners(cfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()
	for _, ch := range h.reloadListeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str(log.FieldEvent, "config.listener_full").Msg("config listener channel full, skipping notification")
		}
	}
}

func (h *Holder) logChanges(prev, next AppConfig) {
	ev := h.logger.Info().Str(log.FieldEvent, "config.changed")
	changed := false
	if prev.DataDir != next.DataDir {
		ev = ev.Str("dataDir", next.DataDir)
		changed = true
	}
	if prev.Layout != next.Layout {
		ev = ev.Str("layout", next.Layout)
		changed = true
	}
	if prev.Title != next.Title {
		ev = ev.Str("title", next.Title)
		changed = true
	}
	if prev.LogLevel != next.LogLevel {
		ev = ev.Str("logLevel", next.LogLevel)
		changed = true
	}
	if !maps.Equal(prev.SourceLabels, next.SourceLabels) {
		ev = ev.Int("sourceLabels", len(next.SourceLabels))
		changed = true
	}
	if !changed {
		ev.Discard()
		return
	}
	ev.Msg("configuration values changed")
}
