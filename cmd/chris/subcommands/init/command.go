package initialize

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flags struct {
	ApiRoot  string `flag:"api-root" metavar:"URL" help:"API root of CUBE, like https://cube.example.com/api/v1/"`
	Username string `flag:"username" alias:"u" metavar:"USERNAME" help:"user to log in as"`
	Password string `flag:"password" metavar:"PASSWORD" help:"password of the user. If not given, the first line of stdin is read."`
	CA       string `flag:"ca" metavar:"PATH" help:"PEM file of a CA certificate to be trusted"`
	NoMark   bool   `flag:"no-mark" help:"do not write .chrisprofile in the current directory"`
}

const ARG_PROFILE = "PROFILE"

type Option struct {
	newClient func(*prof.ChrisProfile) (rest.ChrisClient, error)
	workdir   string
}

// WithClientFactory replaces how to build a client to log in.
func WithClientFactory(f func(*prof.ChrisProfile) (rest.ChrisClient, error)) func(*Option) *Option {
	return func(o *Option) *Option {
		o.newClient = f
		return o
	}
}

// WithWorkdir sets where .chrisprofile is written.
func WithWorkdir(dir string) func(*Option) *Option {
	return func(o *Option) *Option {
		o.workdir = dir
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	return flarc.NewCommand(
		"Log in to CUBE, and save the profile.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_PROFILE, Required: false,
				Help: "name of the profile to be saved. Default: the name in .chrisprofile, or 'default'.",
			},
		},
		common.NewTaskWithCommonFlag(Task(options...)),
		flarc.WithDescription(`
Log in to CUBE with your username and password, and save a token into your profile store.

The profile is also written in ".chrisprofile" in the current directory,
so commands in this directory and below use that profile.
`),
	)
}

func Task(options ...func(*Option) *Option) common.TaskWithCommonFlag[Flags] {
	option := &Option{newClient: rest.NewClient, workdir: "."}
	for _, o := range options {
		option = o(option)
	}

	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()
		if flags.ApiRoot == "" {
			return fmt.Errorf("%w: --api-root is required", flarc.ErrUsage)
		}
		if flags.Username == "" {
			return fmt.Errorf("%w: --username is required", flarc.ErrUsage)
		}

		name := cf.Profile
		if a := cl.Args()[ARG_PROFILE]; 0 < len(a) && a[0] != "" {
			name = a[0]
		}

		password := flags.Password
		if password == "" {
			line, err := bufio.NewReader(cl.Stdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%w: password is not given", flarc.ErrUsage)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		newProf := &prof.ChrisProfile{ApiRoot: flags.ApiRoot}
		if flags.CA != "" {
			pem, err := os.ReadFile(flags.CA)
			if err != nil {
				return fmt.Errorf("failed to read CA certificate (%s): %w", flags.CA, err)
			}
			newProf.Cert.CA = base64.StdEncoding.EncodeToString(pem)
		}

		client, err := option.newClient(newProf)
		if err != nil {
			return err
		}
		token, err := client.AuthToken(ctx, flags.Username, password)
		if err != nil {
			return err
		}
		newProf.Username = flags.Username
		newProf.Token = token
		if err := newProf.Verify(); err != nil {
			return err
		}

		store, err := prof.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			store = prof.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf("failed to load profile store (%s): %w", cf.ProfileStore, err)
		}

		store[name] = newProf
		if err := store.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", cf.ProfileStore, err)
		}
		logger.Printf("profile %s is saved to %s", name, cf.ProfileStore)

		if flags.NoMark {
			return nil
		}
		marker := filepath.Join(option.workdir, common.ProfileMarker)
		if err := os.WriteFile(marker, []byte(name+"\n"), os.FileMode(0600)); err != nil {
			return fmt.Errorf("failed to write %s: %w", marker, err)
		}
		return nil
	}
}
