package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/fnndsc/chrisctl/cmd/chris/errors"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
)

// ErrPluginNotResolved is the cause of errors when no single plugin is identified.
var ErrPluginNotResolved = errors.New("plugin is not identified")

// ResolvePlugin returns the id of a plugin specified by its id or name.
//
// When nameOrId is a name, the plugin is searched with name and version.
// Without version, the name should identify a single plugin.
func ResolvePlugin(ctx context.Context, client rest.ChrisClient, nameOrId string, version string) (int, error) {
	if id, err := strconv.Atoi(nameOrId); err == nil {
		return id, nil
	}

	found, err := client.FindPlugins(ctx, rest.FindPluginParameter{
		Name: nameOrId, Version: version, Window: pages.Window{Limit: 20},
	})
	if err != nil {
		return 0, err
	}

	switch len(found.Results) {
	case 0:
		return 0, cerr.NewCuiError(
			fmt.Sprintf("plugin %s is not found", pluginName(nameOrId, version)),
			cerr.WithCause(ErrPluginNotResolved),
			cerr.WithAdvice("Try `chris plugin find` to see registered plugins."),
		)
	case 1:
		return found.Results[0].Id, nil
	default:
		versions := make([]string, 0, len(found.Results))
		for _, p := range found.Results {
			versions = append(versions, p.Version)
		}
		return 0, cerr.NewCuiError(
			fmt.Sprintf("plugin %s is ambiguous", pluginName(nameOrId, version)),
			cerr.WithCause(ErrPluginNotResolved),
			cerr.WithAdvice(fmt.Sprintf("Specify one of versions: %s", strings.Join(versions, ", "))),
		)
	}
}

func pluginName(name string, version string) string {
	if version == "" {
		return name
	}
	return name + ":" + version
}
