package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string       `flag:"name" alias:"n" metavar:"NAME" help:"name of plugins to be found."`
	Version string       `flag:"plugin-version" metavar:"VERSION" help:"version of plugins to be found."`
	Type    *kflg.Choice `flag:"type" metavar:"any|fs|ds|ts" help:"type of plugins to be found."`
	Limit   int          `flag:"limit" metavar:"N" help:"maximum number of plugins to be shown. 0 means the server default."`
	Offset  int          `flag:"offset" metavar:"N" help:"number of plugins to be skipped."`
}

const typeAny = "any"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Display plugins that satisfy all specified conditions.",
		Flag{
			Type: kflg.NewChoice(typeAny, typeAny, plugins.TypeFS, plugins.TypeDS, plugins.TypeTS),
		},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Display plugins that satisfy all specified conditions.

If no condition is specified, all plugins are displayed, page by page.

Example
-------

Finding all versions of pl-dircopy:

	{{ .Command }} --name pl-dircopy

Finding "fs" plugins, which start Feeds:

	{{ .Command }} --type fs
`),
	)
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		if flags.Limit < 0 || flags.Offset < 0 {
			return fmt.Errorf("%w: --limit and --offset should not be negative", flarc.ErrUsage)
		}

		query := rest.FindPluginParameter{
			Name:    flags.Name,
			Version: flags.Version,
			Window:  pages.Window{Offset: flags.Offset, Limit: flags.Limit},
		}
		if flags.Type != nil && flags.Type.Value != typeAny {
			query.Type = flags.Type.Value
		}

		found, err := client.FindPlugins(ctx, query)
		if err != nil {
			return err
		}
		if found.HasNext() {
			logger.Printf("%d of %d plugins are shown. pass --offset to see more.", len(found.Results), found.Count)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(found)
	}
}
