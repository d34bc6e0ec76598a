package feedview

import (
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
)

// DotStyle colors nodes by the status of their plugin instances.
func DotStyle(n *feedtree.TreeNode) string {
	pi, ok := InstanceOf(n)
	if !ok {
		return `style=dashed color=gray`
	}
	switch pi.Status {
	case instances.StatusSucceeded:
		return `color="#007700"`
	case instances.StatusFailed:
		return `color=red`
	case instances.StatusCancelled:
		return `color=gray`
	default:
		return `color=orange`
	}
}
