package tree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/cheggaaa/pb/v3"
	"github.com/fnndsc/chrisctl/cmd/chris/feedview"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	kflg "github.com/fnndsc/chrisctl/pkg/commandline/flag"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
	"github.com/youta-t/flarc"
)

const (
	FormatText = "text"
	FormatDot  = "dot"
	FormatJson = "json"
)

type Flags struct {
	Format   *kflg.Choice `flag:"format" alias:"f" metavar:"text|dot|json" help:"output format. dot is for graphviz."`
	Progress bool         `flag:"progress" help:"show progress of listing on stderr"`
}

const ARG_FEED_ID = "FEED_ID"

type Option struct {
	assemblerOptions []feedtree.Option
}

// WithAssemblerOptions passes options to the Assembler building the tree.
func WithAssemblerOptions(opts ...feedtree.Option) func(*Option) *Option {
	return func(o *Option) *Option {
		o.assemblerOptions = append(o.assemblerOptions, opts...)
		return o
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	return flarc.NewCommand(
		"Display plugin instances of a Feed as a tree.",
		Flags{
			Format: kflg.NewChoice(FormatText, FormatText, FormatDot, FormatJson),
		},
		flarc.Args{
			{
				Name: ARG_FEED_ID, Required: true,
				Help: "Id of the Feed to be shown",
			},
		},
		common.NewTask(Task(options...)),
		flarc.WithDescription(`
Display plugin instances of a Feed as a tree, rooted by the instance which created the Feed.

Plugin instances are listed page by page. Large Feeds take some requests.

Example
-------

Showing the tree of Feed 12:

	{{ .Command }} 12

Drawing the tree in an image with graphviz:

	{{ .Command }} --format dot 12 | dot -Tpng -o feed-12.png
`),
	)
}

func Task(options ...func(*Option) *Option) common.Task[Flags] {
	option := &Option{}
	for _, o := range options {
		option = o(option)
	}

	return func(
		ctx context.Context,
		logger *log.Logger,
		client rest.ChrisClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		ids, err := common.ParseIds(ARG_FEED_ID, cl.Args()[ARG_FEED_ID])
		if err != nil {
			return err
		}
		feedId := ids[0]

		flags := cl.Flags()
		format := FormatText
		if flags.Format != nil && flags.Format.Value != "" {
			format = flags.Format.Value
		}

		var progress io.Writer
		if flags.Progress {
			progress = cl.Stderr()
		}

		tree, err := RunListTree(
			ctx, logger, client, feedId, progress, option.assemblerOptions...,
		)
		if err != nil {
			return err
		}
		if tree == nil {
			return fmt.Errorf("feed #%d has no root plugin instance", feedId)
		}

		return Write(cl.Stdout(), format, tree)
	}
}

// Write renders tree in format.
func Write(w io.Writer, format string, tree *feedtree.TreeNode) error {
	switch format {
	case FormatText:
		return feedtree.WriteText(w, tree)
	case FormatDot:
		return feedtree.WriteDot(w, tree, feedview.DotStyle)
	case FormatJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(tree)
	default:
		return fmt.Errorf("%w: unknown format: %s", flarc.ErrUsage, format)
	}
}

// RunListTree lists all plugin instances of the feed, and returns the tree of them.
//
// When progress is not nil, a progress bar is drawn there.
func RunListTree(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	feedId int,
	progress io.Writer,
	opts ...feedtree.Option,
) (*feedtree.TreeNode, error) {
	fetch := feedview.Fetcher(client, feedId)

	if progress != nil {
		bar := pb.New(0)
		bar.SetWriter(progress)
		bar.Set("prefix", fmt.Sprintf("feed #%d:", feedId))
		if err := bar.Err(); err != nil {
			return nil, err
		}
		bar.Start()
		defer bar.Finish()

		inner := fetch
		fetch = func(ctx context.Context, offset int, limit int) (feedtree.Page, error) {
			page, err := inner(ctx, offset, limit)
			if err != nil {
				return page, err
			}
			bar.SetTotal(int64(page.TotalCount))
			if 1 < limit {
				bar.SetCurrent(int64(min(offset+len(page.Items), page.TotalCount)))
			}
			return page, nil
		}
	}

	asm := feedtree.New(append([]feedtree.Option{feedtree.WithLogger(logger)}, opts...)...)
	query := feedtree.NewQuery(fetch, asm)
	if err := query.FetchAll(ctx); err != nil {
		return nil, err
	}
	return asm.Tree(), nil
}
