// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging front of the node. It delegates to go-ethereum's
// slog based logger and lets packages declare their logger at init time,
// before the handler is configured.
package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels re-exported for callers configuring handlers.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to the root handler.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// generation is bumped by SetDefault, so context loggers rebind to the new root.
var generation atomic.Uint64

// SetDefault sets the root logger.
func SetDefault(l ethlog.Logger) {
	ethlog.SetDefault(l)
	generation.Add(1)
}

// Root returns the root logger.
func Root() ethlog.Logger {
	return ethlog.Root()
}

// NewTerminalHandler returns a human readable handler filtered at level.
// Passing a *slog.LevelVar lets the level change at runtime.
func NewTerminalHandler(w io.Writer, level slog.Leveler, useColor bool) slog.Handler {
	return &leveledHandler{ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor), level}
}

// NewJSONHandler returns a JSON handler filtered at level.
func NewJSONHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return &leveledHandler{ethlog.JSONHandlerWithLevel(w, LevelTrace), level}
}

// leveledHandler drops records below level before they reach the inner handler.
type leveledHandler struct {
	slog.Handler
	level slog.Leveler
}

func (h *leveledHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{h.Handler.WithAttrs(attrs), h.level}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{h.Handler.WithGroup(name), h.level}
}

// NewLogger creates a root logger over the given handler.
func NewLogger(h slog.Handler) ethlog.Logger {
	return ethlog.NewLogger(h)
}

// FromVerbosity maps the classic 0 (crit) .. 5 (trace) verbosity to a level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}

// WithContext returns a logger that always prefixes ctx to the records.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

type boundLogger struct {
	gen    uint64
	logger ethlog.Logger
}

type contextLogger struct {
	ctx   []any
	bound atomic.Pointer[boundLogger]
}

func (l *contextLogger) get() ethlog.Logger {
	gen := generation.Load()
	if b := l.bound.Load(); b != nil && b.gen == gen {
		return b.logger
	}
	b := &boundLogger{gen, ethlog.Root().With(l.ctx...)}
	l.bound.Store(b)
	return b.logger
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.get().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.get().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.get().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.get().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.get().Error(msg, ctx...) }
func (l *contextLogger) Crit(msg string, ctx ...any)  { l.get().Crit(msg, ctx...) }
