package serve_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/config/profiles/testutils"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/rest/mock"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/internal/commandline"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/logger"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/serve"
	testctx "github.com/fnndsc/chrisctl/internal/testutils/context"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/fnndsc/chrisctl/pkg/utils/echoutil"
	"github.com/fnndsc/chrisctl/pkg/utils/filewatch"
	"github.com/youta-t/flarc"
)

func mockCommandline(flags serve.Flags) commandline.MockCommandline[serve.Flags] {
	return commandline.MockCommandline[serve.Flags]{
		Fullname_: "chris serve",
		Stdout_:   new(strings.Builder),
		Stderr_:   new(strings.Builder),
		Flags_:    flags,
		Args_:     map[string][]string{},
	}
}

func TestServeCommand(t *testing.T) {
	t.Run("it serves trees until the profile store is updated", func(t *testing.T) {
		storePath, err := testutils.TempProfile(t, "default", &prof.ChrisProfile{
			ApiRoot: "https://cube.invalid/api/v1/", Token: "token",
		})
		if err != nil {
			t.Fatal(err)
		}

		up := newUpstream(3)
		client := mock.New(t)
		client.Impl.ListFeedPluginInstances = up.list

		listening := make(chan net.Addr, 1)
		testee := serve.Task(
			serve.WithClientFactory(func(p *prof.ChrisProfile) (rest.ChrisClient, error) {
				if p.ApiRoot != "https://cube.invalid/api/v1/" {
					t.Errorf("unexpected profile: %+v", p)
				}
				return client, nil
			}),
			serve.WithListenHook(func(addr net.Addr) { listening <- addr }),
		)

		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()

		result := make(chan error, 1)
		go func() {
			result <- testee(
				ctx, logger.Null(),
				common.CommonFlags{Profile: "default", ProfileStore: storePath},
				mockCommandline(serve.Flags{Port: 0, Loglevel: kflg.NewChoice("off", echoutil.Levels...)}),
				[]any{},
			)
		}()

		var addr net.Addr
		select {
		case addr = <-listening:
		case err := <-result:
			t.Fatalf("server stopped before listening: %v", err)
		}

		port := addr.(*net.TCPAddr).Port
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/feeds/3/tree", port))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("unexpected status: %d", resp.StatusCode)
		}

		if err := os.WriteFile(storePath, []byte("{}\n"), 0600); err != nil {
			t.Fatal(err)
		}

		select {
		case err := <-result:
			if !errors.Is(err, filewatch.ErrModified) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-ctx.Done():
			t.Fatal("server does not stop")
		}
	})

	t.Run("it stops without error when the context is cancelled", func(t *testing.T) {
		storePath, err := testutils.TempProfile(t, "default", &prof.ChrisProfile{
			ApiRoot: "https://cube.invalid/api/v1/", Token: "token",
		})
		if err != nil {
			t.Fatal(err)
		}
		client := mock.New(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		testee := serve.Task(
			serve.WithClientFactory(func(p *prof.ChrisProfile) (rest.ChrisClient, error) {
				return client, nil
			}),
			serve.WithListenHook(func(net.Addr) { cancel() }),
		)

		err = testee(
			ctx, logger.Null(),
			common.CommonFlags{Profile: "default", ProfileStore: storePath},
			mockCommandline(serve.Flags{Port: 0}),
			[]any{},
		)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("when port is out of range, it causes usage error", func(t *testing.T) {
		testee := serve.Task(
			serve.WithClientFactory(func(p *prof.ChrisProfile) (rest.ChrisClient, error) {
				t.Error("client should not be created")
				return nil, nil
			}),
		)
		err := testee(
			context.Background(), logger.Null(),
			common.CommonFlags{Profile: "default", ProfileStore: "/nowhere/profile"},
			mockCommandline(serve.Flags{Port: 65536}),
			[]any{},
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("when the profile store is missing, it causes error", func(t *testing.T) {
		testee := serve.Task(
			serve.WithClientFactory(func(p *prof.ChrisProfile) (rest.ChrisClient, error) {
				t.Error("client should not be created")
				return nil, nil
			}),
		)
		err := testee(
			context.Background(), logger.Null(),
			common.CommonFlags{Profile: "default", ProfileStore: t.TempDir() + "/profile"},
			mockCommandline(serve.Flags{Port: 0}),
			[]any{},
		)
		if !errors.Is(err, prof.ErrProfileStoreNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
