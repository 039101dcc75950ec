// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger injected by the access-log
// middleware, so every line from a handler carries the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order deleted", "order_id", id)
//	// → time=... level=INFO msg="order deleted" request_id=a1b2c3d4 order_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/cubeshop/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.IsProduction())
	slog.SetDefault(L)
}

// New builds the base logger: JSON at INFO for production, text at DEBUG
// everywhere else.
func New(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Use replaces the base logger, e.g. to fan out to the Mongo sink.
func Use(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
