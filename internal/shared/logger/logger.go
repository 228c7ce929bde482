package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a structured logger bound to a service name. Entries carry the
// service, hostname, an action tag, and the request id from the context.
type Logger struct {
	base     *logrus.Logger
	service  string
	hostname string
}

// NewLogger creates a JSON logger for the given service.
func NewLogger(service string) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	base.SetLevel(logrus.DebugLevel)

	return &Logger{
		base:     base,
		service:  service,
		hostname: hostname,
	}
}

// Unexported type for context keys.
type ctxKey string

// requestIDKey is the context key for the request ID.
const requestIDKey ctxKey = "request_id"

// WithRequestID returns a context carrying a request id (useful for HTTP/mq hops).
func (logger *Logger) WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// requestIDFrom returns a value saved in the context.
func requestIDFrom(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// entry builds the common field set for one log line.
func (logger *Logger) entry(ctx context.Context, action string, details any) *logrus.Entry {
	fields := logrus.Fields{
		"service":    logger.service,
		"hostname":   logger.hostname,
		"action":     action,
		"request_id": requestIDFrom(ctx),
	}
	if details != nil {
		fields["details"] = details
	}
	return logger.base.WithFields(fields)
}

// -- Logger helper functions --

func (logger *Logger) Info(ctx context.Context, action, msg string, details any) {
	logger.entry(ctx, action, details).Info(msg)
}

func (logger *Logger) Debug(ctx context.Context, action, msg string, details any) {
	logger.entry(ctx, action, details).Debug(msg)
}

func (logger *Logger) Error(ctx context.Context, action, msg string, err error) {
	e := logger.entry(ctx, action, nil)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}
