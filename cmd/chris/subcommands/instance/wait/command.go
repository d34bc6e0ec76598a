package wait

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/loop"
	"github.com/fnndsc/chrisctl/pkg/poll"
	"github.com/youta-t/flarc"
	"golang.org/x/sync/errgroup"
)

const ARG_INSTANCE_ID = "INSTANCE_ID"

type Flags struct {
	Interval time.Duration `flag:"interval" alias:"i" metavar:"DURATION" help:"interval between checking statuses, like 5s or 1m."`
}

// ErrNotSucceeded is returned when some plugin instances have settled without success.
var ErrNotSucceeded = errors.New("some plugin instances have not succeeded")

// Outcome is how a plugin instance has settled.
type Outcome struct {
	InstanceId int    `json:"instanceId"`
	State      string `json:"state"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
}

type Option struct {
	sleep loop.Sleep
}

// WithSleep replaces how to wait between checking statuses.
func WithSleep(s loop.Sleep) func(*Option) *Option {
	return func(o *Option) *Option {
		o.sleep = s
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	return flarc.NewCommand(
		"Wait until plugin instances settle.",
		Flags{Interval: poll.DefaultInterval},
		flarc.Args{
			{
				Name: ARG_INSTANCE_ID, Required: true, Repeatable: true,
				Help: "Id of the plugin instance to be waited.",
			},
		},
		common.NewTask(Task(options...)),
		flarc.WithDescription(`
Wait until plugin instances settle: finished successfully, finished with error, or cancelled.

Plugin instances are watched concurrently. Changes of statuses are logged on stderr,
and how they have settled is printed on stdout in JSON.

It fails when any of them has not finished successfully.
`),
	)
}

func Task(options ...func(*Option) *Option) common.Task[Flags] {
	option := &Option{sleep: loop.TimerSleep}
	for _, o := range options {
		option = o(option)
	}

	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		ids, err := common.ParseIds(ARG_INSTANCE_ID, cl.Args()[ARG_INSTANCE_ID])
		if err != nil {
			return err
		}
		interval := cl.Flags().Interval
		if interval <= 0 {
			return fmt.Errorf("%w: --interval should be positive", flarc.ErrUsage)
		}

		outcomes, err := RunWait(
			ctx, logger, client, ids,
			poll.WithInterval(interval), poll.WithSleep(option.sleep),
		)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(outcomes); err != nil {
			return err
		}

		for _, o := range outcomes {
			if o.State != poll.Succeeded.String() {
				return ErrNotSucceeded
			}
		}
		return nil
	}
}

// RunWait watches plugin instances concurrently until all of them settle.
//
// Outcomes are in the order of instanceIds.
// When a status cannot be read, watching others are given up and the error is returned.
func RunWait(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	instanceIds []int,
	opts ...poll.Option,
) ([]Outcome, error) {
	outcomes := make([]Outcome, len(instanceIds))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	for n, id := range instanceIds {
		eg.Go(func() error {
			fetch := func(ctx context.Context) (string, error) {
				inst, err := client.GetPluginInstance(ctx, id)
				if err != nil {
					return "", err
				}
				return inst.Status, nil
			}

			observer := poll.WithObserver(func(tr poll.Transition) {
				switch {
				case tr.Err != nil:
					logger.Printf("plugin instance #%d: %s -> %s (%s): %v", id, tr.From, tr.To, tr.Event, tr.Err)
				case tr.From != tr.To || tr.Attempt == 1:
					logger.Printf("plugin instance #%d: %s -> %s (status: %s)", id, tr.From, tr.To, tr.Status)
				}
			})

			result, err := poll.Watch(ctx, fetch, append(opts, observer)...)
			mu.Lock()
			outcomes[n] = Outcome{
				InstanceId: id,
				State:      result.State.String(),
				Status:     result.Status,
				Attempts:   result.Attempts,
			}
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("plugin instance #%d: %w", id, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
