package loop

import (
	"context"
	"fmt"
	"time"
)

type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// continue loop.
//
// args:
//
// - interval: sleep before starting next task.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// break loop.
//
// args:
//
// - err: If you break loop with error, set non nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a body of loop.
//
// It receives the value returned at the last time, and returns a new one with Next.
type Task[T any] func(context.Context, T) (T, Next)

// Sleep blocks for d or until ctx is done.
//
// It should return ctx.Err() when ctx gets done before d passes.
type Sleep func(ctx context.Context, d time.Duration) error

// TimerSleep is the default Sleep, waiting with time.Timer.
func TimerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		// shutting down is priority. it should come first, and checking timer later.
		if !timer.Stop() {
			select {
			case <-timer.C: // drain. see: time.Timer.Stop's document
			default:
			}
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Start task in loop.
//
// Task should return 2 value.
//
// - T : any value the task needs, like a cursor or a state.
//
// - next: Continue(time.Duration) or Break(error).
// To run one more time, return Continue(time.Duration).
// Your task will be called with context and the last T after time.Duration (can be 0).
// If it is enough, return Break(error). When there are no error, you can pass nil.
// Zero value (Next{}) equals Continue(0), that is, "go next ASAP!".
//
// # Example
//
// Count 1 to 10:
//
//	Start(ctx, 1, func(_ context.Context, value int) (int, Next) {
//		value += 1
//		if 10 <= value {
//			return value, Break(nil)
//		}
//		return value, Continue(0)
//	})
//
// # Args
//
// - ctx : context. When this context get be Done, loop will be break with ctx.Err().
//
// - init : your task will be called as task(ctx, init) at the first time.
//
// - task : task receiving (context, last value), then return (new value, Continue() or Break()).
//
// - options: options for loop.
//
// # Returns
//
// - T: T task returns at last.
// This value is always returned wheather or not it returns non-nil error together.
//
// - error: error in Break(error), or ctx.Err() if ctx is done while sleeping.
// It is nil when loop breaks with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	sleep := Sleep(TimerSleep)
	{
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}
		if lc.deferred != nil {
			lc.deferred()
		}
		if lc.sleep != nil {
			sleep = lc.sleep
		}
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			ctx := lc.ctx
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		}
		value = v

		if err := sleep(ctx, n.interval); err != nil {
			return value, err
		}
		if err := ctx.Err(); err != nil {
			return value, err
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
	sleep    Sleep
}

type LoopOption func(*loopConfig) *loopConfig

// set timeout per loop
//
// this timeout is set on context.Context passed to task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx:   ctx,
			sleep: lc.sleep,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}

// WithSleep replaces how the loop waits between tasks.
//
// Default: TimerSleep
func WithSleep(s Sleep) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		return &loopConfig{ctx: lc.ctx, deferred: lc.deferred, sleep: s}
	}
}
