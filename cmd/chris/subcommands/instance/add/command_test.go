package add_test

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/rest/mock"
	instance_add "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance/add"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/internal/commandline"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/logger"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/fnndsc/chrisctl/pkg/utils/pointer"
	"github.com/google/go-cmp/cmp"
	"github.com/youta-t/flarc"
)

func TestAddCommand(t *testing.T) {
	type Request struct {
		Plugin  string
		Version string
		Spec    instances.Spec
	}
	type When struct {
		flags instance_add.Flags
	}
	type Then struct {
		err     error
		request *Request
	}

	created := instances.Detail{Id: 13, PreviousId: pointer.Ref(12), FeedId: 2, Status: instances.StatusCreated}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			var request *Request
			testee := instance_add.Task(func(
				ctx context.Context, _ *log.Logger, _ rest.ChrisClient,
				plugin string, version string, spec instances.Spec,
			) (instances.Detail, error) {
				request = &Request{Plugin: plugin, Version: version, Spec: spec}
				return created, nil
			})

			stdout := new(strings.Builder)
			err := testee(
				context.Background(), logger.Null(), mock.New(t),
				commandline.MockCommandline[instance_add.Flags]{
					Fullname_: "chris instance add",
					Stdout_:   stdout,
					Stderr_:   new(strings.Builder),
					Flags_:    when.flags,
					Args_:     map[string][]string{},
				},
				[]any{},
			)

			if !cmp.Equal(request, then.request) {
				t.Errorf("unexpected request: %s", cmp.Diff(request, then.request))
			}
			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			var actual instances.Detail
			if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
				t.Fatalf("output is not json: %v\n%s", err, stdout.String())
			}
			if !cmp.Equal(actual, created) {
				t.Errorf("unexpected output: %s", cmp.Diff(actual, created))
			}
		}
	}

	t.Run("it runs the plugin after the previous instance, with parameters", theory(
		When{flags: instance_add.Flags{
			Plugin: "pl-dcm2niix", Version: "1.0.0", Previous: 12, Title: "convert",
			Param: &kflg.Params{"b": "y", "z": 3},
		}},
		Then{request: &Request{
			Plugin: "pl-dcm2niix", Version: "1.0.0",
			Spec: instances.Spec{
				PreviousId: pointer.Ref(12), Title: "convert",
				Params: map[string]any{"b": "y", "z": 3},
			},
		}},
	))

	t.Run("without --previous, it runs the plugin as a new feed", theory(
		When{flags: instance_add.Flags{Plugin: "3", Param: &kflg.Params{}}},
		Then{request: &Request{Plugin: "3", Spec: instances.Spec{Params: map[string]any{}}}},
	))

	t.Run("without --plugin, it is usage error", theory(
		When{flags: instance_add.Flags{Previous: 12}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("with negative --previous, it is usage error", theory(
		When{flags: instance_add.Flags{Plugin: "3", Previous: -1}},
		Then{err: flarc.ErrUsage},
	))
}

func TestRunCreateInstance(t *testing.T) {
	t.Run("it resolves the plugin by name, and runs it", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.FindPlugins = func(ctx context.Context, query rest.FindPluginParameter) (pages.Collection[plugins.Detail], error) {
			return pages.Collection[plugins.Detail]{
				Count:   1,
				Results: []plugins.Detail{{Id: 5, Name: query.Name, Version: "1.0.0"}},
			}, nil
		}
		client.Impl.CreatePluginInstance = func(ctx context.Context, pluginId int, spec instances.Spec) (instances.Detail, error) {
			return instances.Detail{Id: 13, PluginId: pluginId, PreviousId: spec.PreviousId}, nil
		}

		spec := instances.Spec{PreviousId: pointer.Ref(12), Params: map[string]any{"b": "y"}}
		actual, err := instance_add.RunCreateInstance(
			context.Background(), logger.Null(), client, "pl-dcm2niix", "", spec,
		)
		if err != nil {
			t.Fatal(err)
		}
		if actual.Id != 13 {
			t.Errorf("unexpected instance: %+v", actual)
		}
		expected := []mock.CreatePluginInstanceArgs{{PluginId: 5, Spec: spec}}
		if !cmp.Equal(client.Calls.CreatePluginInstance, expected) {
			t.Errorf("unexpected calls: %s", cmp.Diff(client.Calls.CreatePluginInstance, expected))
		}
	})

	t.Run("when the plugin is not found, it runs nothing", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.FindPlugins = func(ctx context.Context, query rest.FindPluginParameter) (pages.Collection[plugins.Detail], error) {
			return pages.Collection[plugins.Detail]{}, nil
		}

		if _, err := instance_add.RunCreateInstance(
			context.Background(), logger.Null(), client, "pl-nothing", "", instances.Spec{},
		); err == nil {
			t.Error("expected error is not returned")
		}
		if 0 < len(client.Calls.CreatePluginInstance) {
			t.Errorf("unexpected calls: %+v", client.Calls.CreatePluginInstance)
		}
	})
}
