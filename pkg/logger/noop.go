package logger

import (
	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
)

// Logger is re-exported from eigensdk-go so callers don't import sdklogging separately.
type Logger = sdklogging.Logger

// NoOpLogger discards everything. Library code falls back to it when a caller passes nil.
type NoOpLogger struct{}

func (l *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Infof(format string, args ...interface{})       {}
func (l *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Debugf(format string, args ...interface{})      {}
func (l *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Errorf(format string, args ...interface{})      {}
func (l *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Warnf(format string, args ...interface{})       {}
func (l *NoOpLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Fatalf(format string, args ...interface{})      {}
func (l *NoOpLogger) With(keysAndValues ...interface{}) Logger       { return l }
func (l *NoOpLogger) WithComponent(componentName string) Logger      { return l }
func (l *NoOpLogger) WithName(name string) Logger                    { return l }
func (l *NoOpLogger) WithServiceName(serviceName string) Logger      { return l }
func (l *NoOpLogger) WithHostName(hostName string) Logger            { return l }
func (l *NoOpLogger) Sync() error                                    { return nil }

func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}

// EnsureLogger returns logger, or a no-op logger when it is nil.
func EnsureLogger(logger Logger) Logger {
	if logger == nil {
		return NewNoOpLogger()
	}
	return logger
}

// Component scopes a logger to one pipeline stage, e.g. "bundler" or "cost-guard".
func Component(logger Logger, name string) Logger {
	return EnsureLogger(logger).With("component", name)
}
