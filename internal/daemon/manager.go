// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the HTTP servers and the runtime lifecycle of ionoview.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/log"
)

// ShutdownHook releases a resource during shutdown. Hooks run in reverse
// registration order after the listeners are closed.
type ShutdownHook func(ctx context.Context) error

// Manager runs the viewer listener and the optional metrics listener.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterShutdownHook(name string, hook ShutdownHook)
}

type lifecycle int

const (
	idle lifecycle = iota
	running
	stopped
)

// listener pairs a bound socket with the server that drains it.
type listener struct {
	name string
	ln   net.Listener
	srv  *http.Server
}

type manager struct {
	serverCfg config.ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu        sync.Mutex
	state     lifecycle
	listeners []listener
	hooks     []namedHook
	closed    chan struct{}
}

type namedHook struct {
	name string
	fn   ShutdownHook
}

// NewManager validates deps and returns a Manager that has not bound anything yet.
func NewManager(serverCfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger.With().Str(log.FieldComponent, "daemon").Logger(),
		closed:    make(chan struct{}),
	}, nil
}

// Start binds every listener before serving any of them, so an address
// conflict fails fast without leaving a half-started daemon. It blocks until
// ctx is cancelled or a listener fails, and returns after Shutdown completed.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != idle {
		m.mu.Unlock()
		return ErrManagerAlreadyStarted
	}
	m.state = running
	m.mu.Unlock()

	bound, err := m.bind()
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.state == stopped {
		m.mu.Unlock()
		for _, l := range bound {
			_ = l.ln.Close()
		}
		return nil
	}
	m.listeners = bound
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range bound {
		g.Go(func() error {
			m.logger.Info().
				Str(log.FieldEvent, "server.listening").
				Str("server", l.name).
				Str("addr", l.ln.Addr().String()).
				Msg("listener ready")
			if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", l.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-m.closed:
			return nil
		}
		// The caller's context is already done here; shutdown gets its own budget.
		return m.Shutdown(context.WithoutCancel(ctx))
	})
	return g.Wait()
}

type listenSpec struct {
	name    string
	addr    string
	handler http.Handler
}

func (m *manager) bind() ([]listener, error) {
	specs := []listenSpec{{name: "viewer", addr: m.serverCfg.ListenAddr, handler: m.deps.APIHandler}}
	if m.deps.MetricsHandler != nil && m.deps.MetricsAddr != "" {
		specs = append(specs, listenSpec{name: "metrics", addr: m.deps.MetricsAddr, handler: m.deps.MetricsHandler})
	}

	out := make([]listener, 0, len(specs))
	for _, s := range specs {
		ln, err := net.Listen("tcp", s.addr)
		if err != nil {
			for _, l := range out {
				_ = l.ln.Close()
			}
			return nil, fmt.Errorf("bind %s listener on %s: %w", s.name, s.addr, err)
		}
		out = append(out, listener{name: s.name, ln: ln, srv: m.newServer(s.handler)})
	}
	return out, nil
}

func (m *manager) newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}
}

// Shutdown closes the listeners within the configured timeout and then runs
// the hooks. Calls after the first one return nil.
func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case idle:
		m.mu.Unlock()
		return ErrManagerNotStarted
	case stopped:
		m.mu.Unlock()
		return nil
	}
	m.state = stopped
	close(m.closed)
	listeners := m.listeners
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	if m.serverCfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.serverCfg.ShutdownTimeout)
		defer cancel()
	}

	var errs []error
	for _, l := range listeners {
		if err := l.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", l.name, err))
		}
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.fn(ctx); err != nil {
			m.logger.Error().Err(err).Str("hook", h.name).Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
			continue
		}
		m.logger.Debug().Str("hook", h.name).Dur("took", time.Since(start)).Msg("shutdown hook done")
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("listeners closed")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, fn: hook})
}
