package initialize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/rest/mock"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	subinit "github.com/fnndsc/chrisctl/cmd/chris/subcommands/init"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/internal/commandline"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/logger"
	"github.com/fnndsc/chrisctl/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
	"github.com/youta-t/flarc"
)

func TestInitCommand(t *testing.T) {
	type When struct {
		flags subinit.Flags
		args  map[string][]string
		stdin string

		token    string
		tokenErr error

		existing prof.ProfileStore
	}
	type Then struct {
		err error

		auth   []mock.AuthTokenArgs
		store  prof.ProfileStore
		marker string // empty if no marker is expected
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dir := t.TempDir()
			storePath := filepath.Join(dir, "home", ".chris", "profile")
			workdir := filepath.Join(dir, "work")
			if err := os.MkdirAll(workdir, 0700); err != nil {
				t.Fatal(err)
			}
			if when.existing != nil {
				if err := when.existing.Save(storePath); err != nil {
					t.Fatal(err)
				}
			}

			client := mock.New(t)
			client.Impl.AuthToken = func(ctx context.Context, username, password string) (string, error) {
				return when.token, when.tokenErr
			}
			var usedProfile *prof.ChrisProfile
			testee := subinit.Task(
				subinit.WithClientFactory(func(p *prof.ChrisProfile) (rest.ChrisClient, error) {
					usedProfile = p
					return client, nil
				}),
				subinit.WithWorkdir(workdir),
			)

			err := testee(
				context.Background(),
				logger.Null(),
				common.CommonFlags{Profile: "default", ProfileStore: storePath},
				commandline.MockCommandline[subinit.Flags]{
					Fullname_: "chris init",
					Stdin_:    strings.NewReader(when.stdin),
					Stdout_:   new(strings.Builder),
					Stderr_:   new(strings.Builder),
					Flags_:    when.flags,
					Args_:     when.args,
				},
				[]any{},
			)

			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: (actual, expected) = (%v, %v)", err, then.err)
				}
				if _, statErr := os.Stat(filepath.Join(workdir, common.ProfileMarker)); !os.IsNotExist(statErr) {
					t.Errorf("marker is written")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(then.auth, client.Calls.AuthToken); diff != "" {
				t.Errorf("login (-expected, +actual):\n%s", diff)
			}
			if usedProfile == nil || usedProfile.ApiRoot != when.flags.ApiRoot {
				t.Errorf("client is not built for the api root: %+v", usedProfile)
			}

			store := try.To(prof.LoadProfileStore(storePath)).OrFatal(t)
			if diff := cmp.Diff(then.store, store); diff != "" {
				t.Errorf("store (-expected, +actual):\n%s", diff)
			}

			content, err := os.ReadFile(filepath.Join(workdir, common.ProfileMarker))
			if then.marker == "" {
				if !os.IsNotExist(err) {
					t.Errorf("marker is written: %q (%v)", content, err)
				}
			} else if string(content) != then.marker {
				t.Errorf("marker: (actual, expected) = (%q, %q)", content, then.marker)
			}
		}
	}

	t.Run("it logs in with the password flag, and saves the profile", theory(
		When{
			flags: subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Password: "chris1234"},
			token: "t0ken",
		},
		Then{
			auth: []mock.AuthTokenArgs{{Username: "chris", Password: "chris1234"}},
			store: prof.ProfileStore{
				"default": {ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Token: "t0ken"},
			},
			marker: "default\n",
		},
	))

	t.Run("it reads the password from stdin, and saves it as the named profile beside others", theory(
		When{
			flags: subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Username: "chris"},
			args:  map[string][]string{subinit.ARG_PROFILE: {"local"}},
			stdin: "from-stdin\nrest is ignored\n",
			token: "t0ken",
			existing: prof.ProfileStore{
				"other": {ApiRoot: "http://other.invalid/api/v1/"},
			},
		},
		Then{
			auth: []mock.AuthTokenArgs{{Username: "chris", Password: "from-stdin"}},
			store: prof.ProfileStore{
				"other": {ApiRoot: "http://other.invalid/api/v1/"},
				"local": {ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Token: "t0ken"},
			},
			marker: "local\n",
		},
	))

	t.Run("with --no-mark, it does not write the marker", theory(
		When{
			flags: subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Password: "p", NoMark: true},
			token: "t0ken",
		},
		Then{
			auth: []mock.AuthTokenArgs{{Username: "chris", Password: "p"}},
			store: prof.ProfileStore{
				"default": {ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Token: "t0ken"},
			},
		},
	))

	t.Run("without --api-root, it is a usage error", theory(
		When{flags: subinit.Flags{Username: "chris", Password: "p"}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("without --username, it is a usage error", theory(
		When{flags: subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Password: "p"}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("without any password, it is a usage error", theory(
		When{flags: subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Username: "chris"}},
		Then{err: flarc.ErrUsage},
	))

	t.Run("when login fails, it returns the error", theory(
		When{
			flags:    subinit.Flags{ApiRoot: "http://cube.invalid/api/v1/", Username: "chris", Password: "wrong"},
			tokenErr: rest.ErrUnauthorized,
		},
		Then{err: rest.ErrUnauthorized},
	))
}
