package serve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/feedview"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
	"github.com/fnndsc/chrisctl/pkg/utils/echoutil"
	"github.com/fnndsc/chrisctl/pkg/utils/filewatch"
	"github.com/labstack/echo/v4"
	"github.com/youta-t/flarc"
	"golang.org/x/sync/errgroup"
)

type Flags struct {
	Port     int          `flag:"port" alias:"p" metavar:"PORT" help:"port to listen. 0 means any free port."`
	Loglevel *kflg.Choice `flag:"loglevel" metavar:"debug|info|warn|error|off" help:"log level of the server"`
}

// DefaultPort is the port which the server listens by default.
const DefaultPort = 8080

type Option struct {
	newClient       func(*prof.ChrisProfile) (rest.ChrisClient, error)
	shutdownTimeout time.Duration
	onListen        func(net.Addr)
}

// WithClientFactory replaces how to build a client for the profile.
func WithClientFactory(f func(*prof.ChrisProfile) (rest.ChrisClient, error)) func(*Option) *Option {
	return func(o *Option) *Option {
		o.newClient = f
		return o
	}
}

// WithListenHook sets a callback receiving the address which the server listens.
func WithListenHook(hook func(net.Addr)) func(*Option) *Option {
	return func(o *Option) *Option {
		o.onListen = hook
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	return flarc.NewCommand(
		"Serve trees of Feeds over HTTP.",
		Flags{
			Port:     DefaultPort,
			Loglevel: kflg.NewChoice("info", echoutil.Levels...),
		},
		flarc.Args{},
		common.NewTaskWithCommonFlag(Task(options...)),
		flarc.WithDescription(`
Serve trees of Feeds over HTTP, for frontends.

Each Feed has a session, which lists its plugin instances in background
since the first request to the Feed. The tree of the Feed grows as listing goes.

Endpoints
---------

	GET    /api/feeds/FEED_ID/tree                   tree of the Feed, and progress of listing
	POST   /api/feeds/FEED_ID/instances              run a plugin, and show it in the tree
	DELETE /api/feeds/FEED_ID/instances/INSTANCE_ID  delete a plugin instance, and hide it
	GET    /api/feeds/FEED_ID/selected               node selected by the last change
	DELETE /api/feeds/FEED_ID                        discard the session of the Feed

The server stops when the profile store is updated, so that supervisors restart it with new credentials.
`),
	)
}

// NewServer builds an echo server serving sessions.
func NewServer(sessions *Sessions, client rest.ChrisClient, loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	Routes(e, sessions, client)
	return e
}

func Task(options ...func(*Option) *Option) common.TaskWithCommonFlag[Flags] {
	option := &Option{
		newClient:       rest.NewClient,
		shutdownTimeout: 15 * time.Second,
		onListen:        func(net.Addr) {},
	}
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
		if flags.Port < 0 || 65535 < flags.Port {
			return fmt.Errorf("%w: --port should be in 0-65535", flarc.ErrUsage)
		}
		loglevel := ""
		if flags.Loglevel != nil {
			loglevel = flags.Loglevel.Value
		}

		profile, err := common.LoadProfile(cf)
		if err != nil {
			return err
		}
		client, err := option.newClient(profile)
		if err != nil {
			return err
		}

		watching, cancel, err := filewatch.UntilModified(ctx, cf.ProfileStore)
		if err != nil {
			return fmt.Errorf("cannot watch profile store (%s): %w", cf.ProfileStore, err)
		}
		defer cancel()

		sessions := NewSessions(watching, logger, func(feedId int) feedtree.Fetcher {
			return feedview.Fetcher(client, feedId)
		})
		e := NewServer(sessions, client, loglevel)

		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", flags.Port))
		if err != nil {
			return err
		}
		e.Listener = listener
		logger.Printf("listening on %s", listener.Addr())
		option.onListen(listener.Addr())

		eg, egctx := errgroup.WithContext(watching)
		eg.Go(func() error {
			if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-egctx.Done()
			graceful, cancel := context.WithTimeout(context.Background(), option.shutdownTimeout)
			defer cancel()
			sessions.Close()
			return e.Shutdown(graceful)
		})

		if err := eg.Wait(); err != nil {
			return err
		}
		if cause := context.Cause(watching); errors.Is(cause, filewatch.ErrModified) {
			logger.Printf("profile store is updated. quit to restart server.")
			return cause
		}
		return nil
	}
}
