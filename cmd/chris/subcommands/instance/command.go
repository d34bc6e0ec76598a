package instance

import (
	instance_add "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance/add"
	instance_rm "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance/rm"
	instance_show "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance/show"
	instance_wait "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance/wait"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	show, err := instance_show.New()
	if err != nil {
		return nil, err
	}
	add, err := instance_add.New()
	if err != nil {
		return nil, err
	}
	rm, err := instance_rm.New()
	if err != nil {
		return nil, err
	}
	wait, err := instance_wait.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Run plugins, and manipulate their instances.",
		struct{}{},
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("add", add),
		flarc.WithSubcommand("rm", rm),
		flarc.WithSubcommand("wait", wait),
	)
}
