// Package logging defines the structured-logging interface shared by the
// carbuyer client, its services and the development backend.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "thread selected", "thread_id", id, "generation", gen)
type Logger interface {
	// Debug logs diagnostic details such as outbound requests.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a failure that was handled and did not change user-visible state.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure surfaced to the user.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
