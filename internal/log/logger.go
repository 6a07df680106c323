// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log owns the process logger of ionoview. Components derive child
// loggers from it; request handlers add the correlation ID from the context.
package log

import (
	"cmp"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level, the sink and the build identity of the process logger.
type Config struct {
	Level   string
	Output  io.Writer // stdout when nil
	Service string    // "ionoview" when empty
	Version string
}

var root atomic.Pointer[zerolog.Logger]

// Configure replaces the process logger. Loggers handed out earlier keep
// writing to the old sink but follow the global level.
func Configure(cfg Config) {
	SetLevel(cfg.Level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	l := zerolog.New(out).With().
		Timestamp().
		Str(FieldService, cmp.Or(cfg.Service, "ionoview")).
		Str(FieldVersion, cfg.Version).
		Logger()
	root.Store(&l)
}

// SetLevel changes the global level without touching the sink. Empty or
// unknown names select info.
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Base returns the process logger, configuring the defaults on first use.
func Base() zerolog.Logger {
	if l := root.Load(); l != nil {
		return *l
	}
	Configure(Config{})
	return *root.Load()
}

// WithComponent returns a child of the process logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
