package observability

import "context"

type contextKey struct{}

// With returns a context carrying the logger. Components down the call chain
// retrieve it with FromContext.
func With(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by the context, or nil when none is
// set. Callers must nil-check before logging.
func FromContext(ctx context.Context) Logger {
	logger, _ := ctx.Value(contextKey{}).(Logger)
	return logger
}
