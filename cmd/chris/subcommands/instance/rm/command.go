package rm

import (
	"context"
	"log"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/youta-t/flarc"
)

const ARG_INSTANCE_ID = "INSTANCE_ID"

type Option struct {
	remove func(ctx context.Context, client rest.ChrisClient, instanceId int) error
}

func WithRemover(
	remove func(ctx context.Context, client rest.ChrisClient, instanceId int) error,
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.remove = remove
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{remove: RunDeleteInstance}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Delete plugin instances, with their descendants.",
		struct{}{},
		flarc.Args{
			{
				Name:       ARG_INSTANCE_ID,
				Required:   true,
				Repeatable: true,
				Help:       "Id of the plugin instance to be deleted.",
			},
		},
		common.NewTask(Task(option.remove)),
		flarc.WithDescription(`
Delete plugin instances.

Plugin instances following deleted ones are deleted too.
`),
	)
}

func Task(
	remove func(context.Context, rest.ChrisClient, int) error,
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		ids, err := common.ParseIds(ARG_INSTANCE_ID, cl.Args()[ARG_INSTANCE_ID])
		if err != nil {
			return err
		}

		for _, id := range ids {
			if err := remove(ctx, client, id); err != nil {
				return err
			}
			logger.Printf("deleted plugin instance #%d", id)
		}
		return nil
	}
}

func RunDeleteInstance(ctx context.Context, client rest.ChrisClient, instanceId int) error {
	return client.DeletePluginInstance(ctx, instanceId)
}
