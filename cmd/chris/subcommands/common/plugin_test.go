package common_test

import (
	"context"
	"errors"
	"testing"

	cerr "github.com/fnndsc/chrisctl/cmd/chris/errors"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/rest/mock"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
)

func TestResolvePlugin(t *testing.T) {
	type When struct {
		nameOrId string
		version  string
		found    []plugins.Detail
	}
	type Then struct {
		id       int
		searched bool
		cuiError bool
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.FindPlugins = func(ctx context.Context, query rest.FindPluginParameter) (pages.Collection[plugins.Detail], error) {
				if query.Name != when.nameOrId || query.Version != when.version {
					t.Errorf("unexpected query: %+v", query)
				}
				return pages.Collection[plugins.Detail]{Count: len(when.found), Results: when.found}, nil
			}

			actual, err := common.ResolvePlugin(context.Background(), client, when.nameOrId, when.version)
			if then.cuiError {
				var cuierr cerr.CUIError
				if !errors.As(err, &cuierr) {
					t.Errorf("expected CUIError, but: %v", err)
				}
				if !errors.Is(err, common.ErrPluginNotResolved) {
					t.Errorf("unexpected error: %v", err)
				}
			} else if err != nil {
				t.Fatal(err)
			} else if actual != then.id {
				t.Errorf("id: (actual, expected) = (%d, %d)", actual, then.id)
			}

			if searched := 0 < len(client.Calls.FindPlugins); searched != then.searched {
				t.Errorf("searched: (actual, expected) = (%v, %v)", searched, then.searched)
			}
		}
	}

	t.Run("an id is used as it is", theory(
		When{nameOrId: "42"},
		Then{id: 42},
	))

	t.Run("a name is searched", theory(
		When{nameOrId: "pl-dircopy", found: []plugins.Detail{{Id: 3, Name: "pl-dircopy", Version: "2.1.1"}}},
		Then{id: 3, searched: true},
	))

	t.Run("a name and a version are searched", theory(
		When{
			nameOrId: "pl-dircopy", version: "2.1.1",
			found: []plugins.Detail{{Id: 3, Name: "pl-dircopy", Version: "2.1.1"}},
		},
		Then{id: 3, searched: true},
	))

	t.Run("when nothing is found, it is an error", theory(
		When{nameOrId: "pl-nothing"},
		Then{searched: true, cuiError: true},
	))

	t.Run("when many versions are found, it is an error", theory(
		When{
			nameOrId: "pl-dircopy",
			found: []plugins.Detail{
				{Id: 3, Name: "pl-dircopy", Version: "2.1.1"},
				{Id: 9, Name: "pl-dircopy", Version: "2.1.2"},
			},
		},
		Then{searched: true, cuiError: true},
	))
}
