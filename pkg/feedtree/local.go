package feedtree

// AddLocal grafts nodes created locally onto the published tree,
// ahead of their appearance in the listing.
//
// Each node is attached as the last child of its parent.
// Nodes without parent, whose parent is not in the tree yet,
// or which are already in the tree are skipped.
// When no tree has been published, it does nothing.
//
// Only the path from the root to the parent is rebuilt;
// other subtrees of the new tree are shared with the previous one.
//
// The last grafted node is passed to the selector.
func (a *Assembler) AddLocal(nodes ...Node) {
	var selected *TreeNode

	a.mu.Lock()
	if a.tree == nil {
		a.mu.Unlock()
		return
	}
	for _, n := range nodes {
		if n.ParentId == nil {
			continue
		}
		if _, ok := a.tree.Find(n.Id); ok {
			continue
		}
		t, child, ok := insert(a.tree, n)
		if !ok {
			continue
		}
		a.tree = t
		a.local = append(a.local, n)
		delete(a.removed, n.Id)
		selected = child
	}
	sel := a.selector
	a.mu.Unlock()

	if selected != nil && sel != nil {
		sel(selected)
	}
}

// RemoveLocal prunes nodes and their descendants from the published tree,
// and forgets them from local items.
//
// Pruned nodes are kept out of trees published later, even if they are listed.
//
// The parent of the last id, as it was before pruning, is passed to the selector.
// When no tree has been published, it does nothing.
func (a *Assembler) RemoveLocal(ids ...int) {
	if len(ids) == 0 {
		return
	}

	var selected *TreeNode

	a.mu.Lock()
	if a.tree == nil {
		a.mu.Unlock()
		return
	}

	removing := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		removing[id] = struct{}{}
		a.removed[id] = struct{}{}
	}

	var parentId *int
	if path := a.tree.pathTo(ids[len(ids)-1]); 2 <= len(path) {
		pid := path[len(path)-2].Id
		parentId = &pid
	}

	a.tree = prune(a.tree, removing)

	local := a.local[:0]
	for _, n := range a.local {
		if _, ok := removing[n.Id]; !ok {
			local = append(local, n)
		}
	}
	a.local = local

	if parentId != nil && a.tree != nil {
		selected, _ = a.tree.Find(*parentId)
	}
	sel := a.selector
	a.mu.Unlock()

	if selected != nil && sel != nil {
		sel(selected)
	}
}

// insert returns a new tree where n is appended to children of its parent,
// and the new node for n.
//
// If the parent is not found, it returns (root, nil, false).
func insert(root *TreeNode, n Node) (*TreeNode, *TreeNode, bool) {
	path := root.pathTo(*n.ParentId)
	if len(path) == 0 {
		return root, nil, false
	}

	pid := *n.ParentId
	child := &TreeNode{
		Id:       n.Id,
		Name:     n.Label,
		ParentId: &pid,
		Item:     n.Payload,
		Children: []*TreeNode{},
	}
	if child.Name == "" {
		child.Name = defaultLabel(n.Id)
	}

	updated := path[len(path)-1].shallowCopy()
	updated.Children = append(updated.Children, child)

	for i := len(path) - 2; 0 <= i; i-- {
		ancestor := path[i].shallowCopy()
		for j, c := range ancestor.Children {
			if c == path[i+1] {
				ancestor.Children[j] = updated
				break
			}
		}
		updated = ancestor
	}
	return updated, child, true
}

// prune returns a tree without nodes in ids and their descendants.
//
// Subtrees not containing such nodes are shared with the given tree.
// It returns nil when the root itself is pruned.
func prune(root *TreeNode, ids map[int]struct{}) *TreeNode {
	type frame struct {
		node     *TreeNode
		next     int         // index of the child to be visited next
		children []*TreeNode // kept children; nil until any child changes
	}

	if _, ok := ids[root.Id]; ok {
		return nil
	}

	stack := []*frame{{node: root}}
	var result *TreeNode
	for 0 < len(stack) {
		top := stack[len(stack)-1]
		if top.next < len(top.node.Children) {
			c := top.node.Children[top.next]
			top.next += 1
			if _, ok := ids[c.Id]; ok {
				if top.children == nil {
					top.children = make([]*TreeNode, 0, len(top.node.Children))
					top.children = append(top.children, top.node.Children[:top.next-1]...)
				}
				continue
			}
			stack = append(stack, &frame{node: c})
			continue
		}

		// all children are visited.
		stack = stack[:len(stack)-1]
		done := top.node
		if top.children != nil {
			cp := *top.node
			cp.Children = top.children
			done = &cp
		}

		if len(stack) == 0 {
			result = done
			break
		}
		parent := stack[len(stack)-1]
		idx := parent.next - 1
		switch {
		case parent.children != nil:
			parent.children = append(parent.children, done)
		case done != parent.node.Children[idx]:
			parent.children = make([]*TreeNode, 0, len(parent.node.Children))
			parent.children = append(parent.children, parent.node.Children[:idx]...)
			parent.children = append(parent.children, done)
		}
	}
	return result
}
