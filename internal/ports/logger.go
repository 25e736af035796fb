package ports

import "context"

// Logger is the leveled, structured logging interface injected into every
// component. Keeping it behind a port lets the std-log adapter be swapped for
// another backend without touching callers.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error message at Error level, attaching the error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
