package show

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/youta-t/flarc"
)

const ARG_INSTANCE_ID = "INSTANCE_ID"

type ShowInstance func(ctx context.Context, client rest.ChrisClient, instanceId int) (instances.Detail, error)

type Option struct {
	show ShowInstance
}

func WithShow(show ShowInstance) func(*Option) *Option {
	return func(o *Option) *Option {
		o.show = show
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{show: RunShowInstance}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Display a plugin instance.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_INSTANCE_ID, Required: true,
				Help: "Id of the plugin instance to be shown",
			},
		},
		common.NewTask(Task(option.show)),
	)
}

func Task(show ShowInstance) common.Task[struct{}] {
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

		inst, err := show(ctx, client, ids[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(inst)
	}
}

func RunShowInstance(ctx context.Context, client rest.ChrisClient, instanceId int) (instances.Detail, error) {
	return client.GetPluginInstance(ctx, instanceId)
}
