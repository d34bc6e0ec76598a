package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	"github.com/fnndsc/chrisctl/pkg/api/types/feeds"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name   string `flag:"name" alias:"n" metavar:"NAME" help:"part of names of Feeds to be found."`
	Limit  int    `flag:"limit" metavar:"N" help:"maximum number of Feeds to be shown. 0 means the server default."`
	Offset int    `flag:"offset" metavar:"N" help:"number of Feeds to be skipped."`
}

type Option struct {
	find FindFeeds
}

type FindFeeds func(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	query rest.FindFeedParameter,
) (pages.Collection[feeds.Detail], error)

func WithFind(find FindFeeds) func(*Option) *Option {
	return func(o *Option) *Option {
		o.find = find
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{find: RunFindFeeds}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Display Feeds visible for you.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display Feeds visible for you, as a page of the listing.

Example
-------

Finding Feeds whose name contains "brain":

	{{ .Command }} --name brain

Showing the second page of 10 Feeds:

	{{ .Command }} --limit 10 --offset 10
`),
	)
}

func Task(find FindFeeds) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		if flags.Limit < 0 {
			return fmt.Errorf("%w: --limit should not be negative", flarc.ErrUsage)
		}
		if flags.Offset < 0 {
			return fmt.Errorf("%w: --offset should not be negative", flarc.ErrUsage)
		}

		found, err := find(ctx, logger, client, rest.FindFeedParameter{
			Name:   flags.Name,
			Window: pages.Window{Offset: flags.Offset, Limit: flags.Limit},
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(found)
	}
}

func RunFindFeeds(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	query rest.FindFeedParameter,
) (pages.Collection[feeds.Detail], error) {
	found, err := client.FindFeeds(ctx, query)
	if err != nil {
		return pages.Collection[feeds.Detail]{}, err
	}
	if found.HasNext() {
		logger.Printf("%d of %d Feeds are shown. pass --offset to see more.", len(found.Results), found.Count)
	}
	return found, nil
}
