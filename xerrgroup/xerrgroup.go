// Package xerrgroup extends [errgroup] by providing a way to collect results from subtasks.
// It has a very similar API and as much as possible the exact same behavior as [errgroup].
package xerrgroup

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group behaves like a [errgroup.Group] but collects results from subtasks
// A [Group] must not be copied after first use.
type Group[T any] struct {
	mu   sync.Mutex
	vals []T
	g    *errgroup.Group
}

// New creates a new [Group] with no limit and no associated context.
func New[T any]() *Group[T] {
	return &Group[T]{g: &errgroup.Group{}}
}

// WithContext returns a new [Group] and an associated Context derived from ctx.
// The derived Context is canceled the first time a function passed to Go
// returns a non-nil error or the first time Wait returns, whichever occurs first.
// The cause of the cancellation is the first error.
func WithContext[T any](ctx context.Context) (*Group[T], context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	return &Group[T]{g: g}, ctx
}

// SetLimit limits the number of active goroutines in this group to at most n.
// A negative value indicates no limit. It must not be called while subtasks are active.
func (g *Group[T]) SetLimit(n int) {
	g.g.SetLimit(n)
}

// Wait blocks until all function calls from the Go method have returned, then returns the first non-nil error (if any) from them.
// It will collect the results of each function call and return it as a slice, in completion order.
// In case an error happened in one of the subtasks partial results are possible and the slice may not be empty.
// It is the caller responsibility to decide if a partial result is acceptable or just fail the entire task because some subtask failed.
func (g *Group[T]) Wait() ([]T, error) {
	err := g.g.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vals, err
}

// Go calls the given function in a new goroutine. It blocks until the new
// goroutine can be added without the number of active goroutines in the group
// exceeding the configured limit.
//
// If the function returns a nil error the returned value will be collected and returned on the [Group.Wait] call.
// If the function returns an error the returned value won't be collected.
//
// The first call to return a non-nil error cancels the group's context,
// if the group was created by calling WithContext. The error will be returned
// by Wait.
func (g *Group[T]) Go(f func() (T, error)) {
	g.g.Go(func() error {
		v, err := f()
		if err != nil {
			return err
		}
		g.mu.Lock()
		g.vals = append(g.vals, v)
		g.mu.Unlock()
		return nil
	})
}
