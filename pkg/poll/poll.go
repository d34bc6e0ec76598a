// Package poll watches a remote status until it settles.
//
// Watching is a state machine. It starts in Polling, and each observation
// is classified into an Event which moves the machine along the transition
// table below. Other states are terminal; no event leaves them.
//
//	Polling --Running-->    Polling
//	Polling --Success-->    Succeeded
//	Polling --Failure-->    Failed
//	Polling --FetchError--> Failed
//	Polling --Cancel-->     Cancelled
//	Polling --Abort-->      Cancelled
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/fnndsc/chrisctl/pkg/loop"
)

type State int

const (
	Polling State = iota
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown (%d)", int(s))
	}
}

// Terminal reports whether no event leaves s.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

type Event int

const (
	// status is observed, and it is not settled yet.
	Running Event = iota

	// status is observed, and it is settled successfully.
	Success

	// status is observed, and it is settled with error.
	Failure

	// status is observed, and it has been cancelled remotely.
	Cancel

	// status could not be observed.
	FetchError

	// the watcher has given up, because its context is done.
	Abort
)

func (e Event) String() string {
	switch e {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Cancel:
		return "cancel"
	case FetchError:
		return "fetch error"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("unknown (%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	Polling: {
		Running:    Polling,
		Success:    Succeeded,
		Failure:    Failed,
		FetchError: Failed,
		Cancel:     Cancelled,
		Abort:      Cancelled,
	},
}

// Transit returns the state after e happens in s.
//
// If s is terminal or e is unknown, it returns (s, false).
func Transit(s State, e Event) (State, bool) {
	table, ok := transitions[s]
	if !ok {
		return s, false
	}
	next, ok := table[e]
	if !ok {
		return s, false
	}
	return next, true
}

// Transition is a record of one step of the machine.
type Transition struct {
	From  State
	To    State
	Event Event

	// status observed. Empty for FetchError and Abort.
	Status string

	// Err is the cause of FetchError or Abort.
	Err error

	// Attempt is the number of fetches so far, including this one.
	Attempt int
}

// Result is the final state of watching.
type Result struct {
	State    State
	Status   string
	Attempts int
	Err      error
}

// Fetch reads the current status.
type Fetch func(ctx context.Context) (string, error)

// Classifier maps a status to an Event.
//
// It should return one of Running, Success, Failure or Cancel.
type Classifier func(status string) Event

// PluginInstanceStatus classifies status of ChRIS plugin instances.
func PluginInstanceStatus(status string) Event {
	switch status {
	case "finishedSuccessfully":
		return Success
	case "finishedWithError":
		return Failure
	case "cancelled":
		return Cancel
	default:
		return Running
	}
}

// DefaultInterval is the interval between fetches.
const DefaultInterval = 5 * time.Second

type config struct {
	interval time.Duration
	sleep    loop.Sleep
	observe  func(Transition)
	classify Classifier
}

type Option func(*config) *config

func WithInterval(d time.Duration) Option {
	return func(c *config) *config {
		c.interval = d
		return c
	}
}

// WithSleep replaces how to wait between fetches.
//
// Default: loop.TimerSleep
func WithSleep(s loop.Sleep) Option {
	return func(c *config) *config {
		c.sleep = s
		return c
	}
}

// WithObserver sets a callback receiving each Transition.
func WithObserver(observe func(Transition)) Option {
	return func(c *config) *config {
		c.observe = observe
		return c
	}
}

// WithClassifier replaces how statuses are classified.
//
// Default: PluginInstanceStatus
func WithClassifier(cls Classifier) Option {
	return func(c *config) *config {
		c.classify = cls
		return c
	}
}

// Watch fetches status repeatedly until the machine reaches a terminal state.
//
// # Returns
//
// - Result: the terminal state and the last status observed.
//
// - error: the cause when the machine ends with FetchError or Abort.
// Settling in Failed or Cancelled by an observed status is not an error.
func Watch(ctx context.Context, fetch Fetch, opts ...Option) (Result, error) {
	conf := &config{
		interval: DefaultInterval,
		sleep:    loop.TimerSleep,
		observe:  func(Transition) {},
		classify: PluginInstanceStatus,
	}
	for _, o := range opts {
		conf = o(conf)
	}

	step := func(r Result, ev Event, status string, err error) Result {
		next, _ := Transit(r.State, ev)
		conf.observe(Transition{
			From: r.State, To: next, Event: ev,
			Status: status, Err: err, Attempt: r.Attempts,
		})
		r.State = next
		r.Err = err
		if status != "" {
			r.Status = status
		}
		return r
	}

	result, err := loop.Start(
		ctx, Result{State: Polling},
		func(ctx context.Context, r Result) (Result, loop.Next) {
			r.Attempts += 1
			status, err := fetch(ctx)
			switch {
			case err != nil && ctx.Err() != nil:
				r = step(r, Abort, "", ctx.Err())
			case err != nil:
				r = step(r, FetchError, "", err)
			default:
				r = step(r, conf.classify(status), status, nil)
			}

			if r.State.Terminal() {
				return r, loop.Break(nil)
			}
			return r, loop.Continue(conf.interval)
		},
		loop.WithSleep(conf.sleep),
	)

	if err != nil && !result.State.Terminal() {
		// context is done while sleeping (or before the first fetch).
		result = step(result, Abort, "", err)
	}
	return result, result.Err
}
