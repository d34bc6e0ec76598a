package add

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Plugin   string       `flag:"plugin" alias:"p" metavar:"NAME|ID" help:"name or id of the plugin to be run. Required."`
	Version  string       `flag:"plugin-version" metavar:"VERSION" help:"version of the plugin, when it is specified by name."`
	Previous int          `flag:"previous" metavar:"INSTANCE_ID" help:"id of the plugin instance whose output is the input of the new one."`
	Title    string       `flag:"title" alias:"t" metavar:"TITLE" help:"title of the new plugin instance."`
	Param    *kflg.Params `flag:"param" metavar:"NAME=VALUE" help:"parameter of the plugin. Repeatable."`
}

type CreateInstance func(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	plugin string,
	version string,
	spec instances.Spec,
) (instances.Detail, error)

type Option struct {
	create CreateInstance
}

func WithCreator(create CreateInstance) func(*Option) *Option {
	return func(o *Option) *Option {
		o.create = create
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{create: RunCreateInstance}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Run a plugin, and create a new plugin instance.",
		Flags{Param: &kflg.Params{}},
		flarc.Args{},
		common.NewTask(Task(option.create)),
		flarc.WithDescription(`
Run a plugin, and create a new plugin instance.

"fs" plugins start a new Feed, so they need no --previous.
"ds" and "ts" plugins grow a Feed; pass the plugin instance to follow as --previous.

Parameters of the plugin are passed with --param NAME=VALUE.
Values looking like numbers or booleans are sent as such. Quote them with " to send as strings.

Example
-------

Running pl-dircopy to start a new Feed:

	{{ .Command }} --plugin pl-dircopy --param dir=chris/uploads/dicoms

Running pl-dcm2niix after plugin instance 12:

	{{ .Command }} --plugin pl-dcm2niix --plugin-version 1.0.0 --previous 12 --param b=y

Then wait for it:

	chris instance wait ID
`),
	)
}

func Task(create CreateInstance) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()
		if flags.Plugin == "" {
			return fmt.Errorf("%w: --plugin is required", flarc.ErrUsage)
		}
		if flags.Previous < 0 {
			return fmt.Errorf("%w: --previous should be positive", flarc.ErrUsage)
		}

		spec := instances.Spec{Title: flags.Title, Params: map[string]any{}}
		if 0 < flags.Previous {
			prev := flags.Previous
			spec.PreviousId = &prev
		}
		if flags.Param != nil {
			for k, v := range *flags.Param {
				spec.Params[k] = v
			}
		}

		created, err := create(ctx, logger, client, flags.Plugin, flags.Version, spec)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(created)
	}
}

func RunCreateInstance(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	plugin string,
	version string,
	spec instances.Spec,
) (instances.Detail, error) {
	pluginId, err := common.ResolvePlugin(ctx, client, plugin, version)
	if err != nil {
		return instances.Detail{}, err
	}

	created, err := client.CreatePluginInstance(ctx, pluginId, spec)
	if err != nil {
		return instances.Detail{}, err
	}
	logger.Printf("created plugin instance #%d of plugin #%d in feed #%d", created.Id, pluginId, created.FeedId)
	return created, nil
}
