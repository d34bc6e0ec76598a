package plugin

import (
	plugin_find "github.com/fnndsc/chrisctl/cmd/chris/subcommands/plugin/find"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := plugin_find.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Browse plugins registered in ChRIS.",
		struct{}{},
		flarc.WithSubcommand("find", find),
	)
}
