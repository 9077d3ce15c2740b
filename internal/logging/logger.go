// Package logging holds the structured logger used throughout the server.
// The interface deliberately mirrors slog's key-value calling convention so
// the default implementation stays a thin wrapper.
package logging

import "context"

// Logger accepts a message plus alternating key-value args:
//
//	log.Info(ctx, "message stored", "message_id", id, "recipient_id", to)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that attaches the given key-value pairs to
	// every record it emits.
	With(args ...any) Logger
}
