// Package feedview connects plugin instances of a feed to the tree assembler.
package feedview

import (
	"context"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
)

// NodeOf converts a plugin instance into a record for feedtree.
//
// The instance is carried as the Payload of the record.
func NodeOf(pi instances.Detail) feedtree.Node {
	return feedtree.Node{
		Id:       pi.Id,
		ParentId: pi.PreviousId,
		Label:    feedtree.Label(pi.Id, pi.Title, pi.PluginName),
		Payload:  pi,
	}
}

// Fetcher lists plugin instances of the feed as pages of feedtree.
func Fetcher(client rest.ChrisClient, feedId int) feedtree.Fetcher {
	return func(ctx context.Context, offset int, limit int) (feedtree.Page, error) {
		listed, err := client.ListFeedPluginInstances(ctx, feedId, offset, limit)
		if err != nil {
			return feedtree.Page{}, err
		}
		page := feedtree.Page{
			TotalCount: listed.Count,
			Items:      make([]feedtree.Node, 0, len(listed.Results)),
		}
		for _, pi := range listed.Results {
			page.Items = append(page.Items, NodeOf(pi))
		}
		return page, nil
	}
}

// InstanceOf returns the plugin instance carried by a node, if any.
//
// Placeholders of parents not listed yet carry nothing.
func InstanceOf(n *feedtree.TreeNode) (instances.Detail, bool) {
	if n == nil {
		return instances.Detail{}, false
	}
	pi, ok := n.Item.(instances.Detail)
	return pi, ok
}
