package logging

import "log/slog"

// DispatcherLogger adapts slog to the dispatcher's Logger interface.
type DispatcherLogger struct {
	logger func() *slog.Logger
}

// NewDispatcherLogger logs to a fixed logger.
func NewDispatcherLogger(logger *slog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: func() *slog.Logger { return logger }}
}

// DispatcherLogger returns a dispatcher logger that follows later Setup calls.
func (m *SlogManager) DispatcherLogger() *DispatcherLogger {
	return &DispatcherLogger{logger: m.Logger}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.logger().Debug(msg, append(keysAndValues, "component", "dispatcher")...)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.logger().Info(msg, append(keysAndValues, "component", "dispatcher")...)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.logger().Error(msg, append(keysAndValues, "component", "dispatcher")...)
}
