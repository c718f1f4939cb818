package logger

import (
	"context"
	"log/slog"

	"netprofile/internal/app/port"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// slogAdapter implements port.Logger on top of a slog.Logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a port.Logger writing through the process logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewZapAdapter returns a port.Logger writing to the given zap logger.
func NewZapAdapter(l *zap.Logger) port.Logger {
	return &slogAdapter{l: slog.New(zapslog.NewHandler(l.Core()))}
}

func (a *slogAdapter) logger() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	return current()
}

// Info логирует информационное сообщение.
func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger().Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Debug логирует отладочное сообщение.
func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger().Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Warn логирует предупреждающее сообщение.
func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger().Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error логирует сообщение об ошибке.
func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger().Log(context.Background(), slog.LevelError, msg, args...)
}
