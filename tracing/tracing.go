// Package tracing provides functions to help integrate logging with run tracing.
// A run is one conversion of a script, all logs and events it produces carry its ID.
package tracing

import (
	"context"

	"github.com/birdie-ai/remodel/slog"
	"github.com/google/uuid"
)

// NewRunID generates a new random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun associates a new run ID, and the given source, with the returned context.
// The logger on the context will have `run_id` and `source` added to it.
// Use slog.FromCtx(ctx) to retrieve the logger.
func StartRun(ctx context.Context, source string) context.Context {
	runID := NewRunID()
	ctx = CtxWithRunID(ctx, runID)
	ctx = context.WithValue(ctx, sourceKey, source)

	log := slog.FromCtx(ctx).With("run_id", runID, "source", source)
	return slog.NewContext(ctx, log)
}

// CtxWithRunID creates a new [context.Context] with the given run ID associated with it.
// Call [CtxGetRunID] to retrieve the run ID.
func CtxWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// CtxGetRunID gets the run ID associated with this context.
// Return the run ID and true if there is a run ID, empty and false otherwise.
func CtxGetRunID(ctx context.Context) (string, bool) {
	return ctxget(ctx, runIDKey)
}

// CtxGetSource gets the source of the run associated with this context.
func CtxGetSource(ctx context.Context) (string, bool) {
	return ctxget(ctx, sourceKey)
}

// key is the type used to store data on contexts.
type key int

const (
	runIDKey key = iota
	sourceKey
)

func ctxget(ctx context.Context, k key) (string, bool) {
	str, ok := ctx.Value(k).(string)
	return str, ok
}
