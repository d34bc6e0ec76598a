// Package context builds contexts bound to tests.
package context

import (
	"context"
	"testing"
	"time"
)

// WithTest wraps ctx to be done 1 second before the deadline of the test,
// so that the test can clean up resources.
//
// The context is cancelled when the test ends, also.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc
	if deadline, ok := t.Deadline(); ok {
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-time.Second))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	t.Cleanup(cancel)
	return ctx, cancel
}
