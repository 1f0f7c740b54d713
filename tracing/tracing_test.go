package tracing_test

import (
	"context"
	"testing"

	"github.com/birdie-ai/remodel/slog"
	"github.com/birdie-ai/remodel/tracing"
	"github.com/google/uuid"
)

func TestStartRun(t *testing.T) {
	ctx := context.Background()
	defaultLogger := slog.FromCtx(ctx)

	ctx = tracing.StartRun(ctx, "shop.json")

	runID, ok := tracing.CtxGetRunID(ctx)
	if !ok {
		t.Fatal("want run ID")
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run ID %q is not a UUID: %v", runID, err)
	}

	source, ok := tracing.CtxGetSource(ctx)
	if !ok || source != "shop.json" {
		t.Fatalf("got source (%q, %v); want shop.json", source, ok)
	}

	if got := slog.FromCtx(ctx); got == defaultLogger || got == nil {
		t.Fatal("want run scoped logger on context")
	}

	other := tracing.StartRun(context.Background(), "shop.json")
	otherID, _ := tracing.CtxGetRunID(other)
	if otherID == runID {
		t.Fatalf("runs share ID %q", runID)
	}
}

func TestCtxWithRunID(t *testing.T) {
	const want = "run-id-value"
	ctx := context.Background()

	got, ok := tracing.CtxGetRunID(ctx)
	if ok {
		t.Fatalf("unexpected run id: %q", got)
	}

	ctx = tracing.CtxWithRunID(ctx, want)

	got, ok = tracing.CtxGetRunID(ctx)
	if !ok {
		t.Fatal("want run ID")
	}
	if got != want {
		t.Fatalf("got %q != want %q", got, want)
	}
}
