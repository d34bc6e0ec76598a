package feedtree

import "fmt"

// Node is a flat record as listed by a paged source.
type Node struct {
	Id int

	// nil when the record is a candidate root.
	ParentId *int

	Label string

	// Payload is the full record the Node was derived from.
	// It is carried to TreeNode.Item as is.
	Payload any
}

// Page is one response of a paged source.
type Page struct {
	Items      []Node
	TotalCount int
}

// TreeNode is a node of a published tree.
//
// Published trees are shared between readers. Do not modify them.
type TreeNode struct {
	Id       int         `json:"id"`
	Name     string      `json:"name"`
	ParentId *int        `json:"parentId,omitempty"`
	Item     any         `json:"item,omitempty"`
	Children []*TreeNode `json:"children"`
}

// Label returns a display label for a record.
//
// title takes precedence, then typeName. If both are empty, "Node {id}".
func Label(id int, title string, typeName string) string {
	if title != "" {
		return title
	}
	if typeName != "" {
		return typeName
	}
	return defaultLabel(id)
}

func defaultLabel(id int) string {
	return fmt.Sprintf("Node %d", id)
}

// Find returns the node with id in the subtree of n.
func (n *TreeNode) Find(id int) (*TreeNode, bool) {
	path := n.pathTo(id)
	if len(path) == 0 {
		return nil, false
	}
	return path[len(path)-1], true
}

// Walk visits nodes in depth-first pre-order.
//
// When fn returns false, children of the node are not visited.
func (n *TreeNode) Walk(fn func(depth int, node *TreeNode) bool) {
	if n == nil {
		return
	}
	type frame struct {
		depth int
		node  *TreeNode
	}
	stack := []frame{{0, n}}
	for 0 < len(stack) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.depth, top.node) {
			continue
		}
		for i := len(top.node.Children) - 1; 0 <= i; i-- {
			stack = append(stack, frame{top.depth + 1, top.node.Children[i]})
		}
	}
}

// Len returns the number of nodes in the subtree of n.
func (n *TreeNode) Len() int {
	count := 0
	n.Walk(func(int, *TreeNode) bool {
		count += 1
		return true
	})
	return count
}

// pathTo returns nodes from n to the node with id, both inclusive.
//
// If no such node, it returns nil.
func (n *TreeNode) pathTo(id int) []*TreeNode {
	if n == nil {
		return nil
	}
	if n.Id == id {
		return []*TreeNode{n}
	}
	for _, c := range n.Children {
		if p := c.pathTo(id); p != nil {
			return append([]*TreeNode{n}, p...)
		}
	}
	return nil
}

func (n *TreeNode) shallowCopy() *TreeNode {
	cp := *n
	cp.Children = make([]*TreeNode, len(n.Children), len(n.Children)+1)
	copy(cp.Children, n.Children)
	return &cp
}
