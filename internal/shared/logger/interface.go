package logger

import "log/slog"

// Interface is the structured logger handed to every component.
type Interface interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Interface
	Named(name string) Interface

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

func NewLogger() Interface {
	return &slogLogger{logger: Get()}
}

func NewLoggerWithSlog(l *slog.Logger) Interface {
	return &slogLogger{logger: l}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) With(args ...any) Interface {
	return &slogLogger{logger: l.logger.With(args...)}
}

func (l *slogLogger) Named(name string) Interface {
	return &slogLogger{logger: l.logger.With("logger", name)}
}

func (l *slogLogger) Debugw(msg string, kv ...any) { l.logger.Debug(msg, kv...) }
func (l *slogLogger) Infow(msg string, kv ...any) { l.logger.Info(msg, kv...) }
func (l *slogLogger) Warnw(msg string, kv ...any) { l.logger.Warn(msg, kv...) }
func (l *slogLogger) Errorw(msg string, kv ...any) { l.logger.Error(msg, kv...) }

// nopLogger discards everything; used by tests and by components built
// without a logger.
type nopLogger struct{}

func NewNopLogger() Interface { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Interface { return n }
func (n nopLogger) Named(string) Interface { return n }
func (nopLogger) Debugw(string, ...any) {}
func (nopLogger) Infow(string, ...any) {}
func (nopLogger) Warnw(string, ...any) {}
func (nopLogger) Errorw(string, ...any) {}
