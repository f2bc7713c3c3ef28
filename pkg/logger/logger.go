package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type Log interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	ErrorErr(message string, err error, args ...any)
	Fatal(message string, args ...any)
	FatalErr(message string, err error, args ...any)
	With(args ...any) Log
}

type Logger struct {
	logger *slog.Logger
}

func New(env string) *Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return &Logger{logger: log}
}

// NewDiscard returns a logger that drops every record. Used by tests.
func NewDiscard() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

func (l *Logger) Error(message string, args ...any) {
	l.logger.Error(message, args...)
}

func (l *Logger) Fatal(message string, args ...any) {
	l.logger.Error("FATAL: "+message, args...)
	os.Exit(1)
}

func (l *Logger) ErrorErr(message string, err error, args ...any) {
	allArgs := append(args, Err(err))
	l.logger.Error(message, allArgs...)
}

func (l *Logger) FatalErr(message string, err error, args ...any) {
	allArgs := append(args, Err(err))
	l.logger.Error("FATAL: "+message, allArgs...)
	os.Exit(1)
}

func (l *Logger) With(args ...any) Log {
	return &Logger{logger: l.logger.With(args...)}
}

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
