package feed

import (
	feed_find "github.com/fnndsc/chrisctl/cmd/chris/subcommands/feed/find"
	feed_tree "github.com/fnndsc/chrisctl/cmd/chris/subcommands/feed/tree"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := feed_find.New()
	if err != nil {
		return nil, err
	}
	tree, err := feed_tree.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Browse ChRIS Feeds.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("tree", tree),
	)
}
