package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs a finished HTTP exchange at a level derived from its status
func LogRequest(l Logger, service, method, url string, statusCode int, durationMs float64) {
	if l == nil {
		l = GetLogger()
	}

	fields := map[string]interface{}{
		"service":     service,
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogTransfer logs the outcome of moving one photo to the destination
func LogTransfer(l Logger, fileName, remotePath string, size int64, err error) {
	if l == nil {
		l = GetLogger()
	}

	entry := l.WithFields(map[string]interface{}{
		"file_name":   fileName,
		"remote_path": remotePath,
		"size_bytes":  size,
	})

	if err != nil {
		entry.WithError(err).Error("Photo transfer failed")
		return
	}
	entry.Info("Photo uploaded")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, cfg map[string]interface{}) {
	l := GetLogger().WithField("component", component)
	if len(cfg) > 0 {
		l = l.WithFields(cfg)
	}
	l.Info("Component started")
}

// MaskSecret keeps the first and last four characters of a token
func MaskSecret(s string) string {
	if len(s) <= 8 {
		if s == "" {
			return ""
		}
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
