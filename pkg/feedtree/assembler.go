package feedtree

import (
	"log"
	"slices"
	"sync"
)

// DefaultBatchSize is the number of pages merged between publications.
const DefaultBatchSize = 3

// entry is a node in the arena.
//
// Children refer other entries by id, so entries can be updated in place
// without chasing pointers.
type entry struct {
	id          int
	label       string
	parentId    *int
	payload     any
	children    []int
	placeholder bool
}

// Assembler rebuilds a single-rooted tree from flat records listed page by page.
//
// Records are merged into an arena as pages arrive, in any order.
// Readers see only published trees, which are rebuilt from the arena
// every few pages and never modified after publication.
type Assembler struct {
	mu sync.Mutex

	logger    *log.Logger
	batch     int
	selector  func(*TreeNode)
	onPublish func(*TreeNode)

	arena   map[int]*entry
	rootId  int
	hasRoot bool
	records int

	integrated   int // pages merged so far
	sincePublish int // pages merged since the last publication

	tree      *TreeNode
	published int
	local     []Node
	removed   map[int]struct{}
}

type Option func(*Assembler) *Assembler

// WithLogger sets a logger to report anomalies of listed records.
//
// Default: log.Default()
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) *Assembler {
		a.logger = l
		return a
	}
}

// WithBatchSize sets how many pages are merged before publishing a new tree.
//
// Values less than 1 are treated as 1.
func WithBatchSize(n int) Option {
	return func(a *Assembler) *Assembler {
		if n < 1 {
			n = 1
		}
		a.batch = n
		return a
	}
}

// WithSelector sets a callback receiving nodes to be selected after
// AddLocal and RemoveLocal.
func WithSelector(sel func(*TreeNode)) Option {
	return func(a *Assembler) *Assembler {
		a.selector = sel
		return a
	}
}

// WithPublishHook sets a callback receiving each published tree.
//
// The tree can be nil when no root has been listed yet.
func WithPublishHook(hook func(*TreeNode)) Option {
	return func(a *Assembler) *Assembler {
		a.onPublish = hook
		return a
	}
}

func New(opts ...Option) *Assembler {
	a := &Assembler{
		logger:  log.Default(),
		batch:   DefaultBatchSize,
		arena:   map[int]*entry{},
		removed: map[int]struct{}{},
	}
	for _, o := range opts {
		a = o(a)
	}
	return a
}

// Integrate merges pages which have not been integrated yet.
//
// pages should be all pages fetched so far, in the order they were fetched.
// Pages in the prefix already integrated are skipped,
// so calling this again with the same pages has no effect.
//
// A new tree is published after every batch of pages,
// and after the last page when hasNextPage is false.
func (a *Assembler) Integrate(pages []Page, hasNextPage bool) {
	var notify []*TreeNode

	a.mu.Lock()
	for a.integrated < len(pages) {
		for _, n := range pages[a.integrated].Items {
			a.merge(n)
		}
		a.integrated += 1
		a.sincePublish += 1

		last := a.integrated == len(pages)
		if a.batch <= a.sincePublish || (last && !hasNextPage) {
			notify = append(notify, a.publish())
			a.sincePublish = 0
		}
	}
	hook := a.onPublish
	a.mu.Unlock()

	if hook == nil {
		return
	}
	for _, t := range notify {
		hook(t)
	}
}

func (a *Assembler) merge(n Node) {
	e, found := a.arena[n.Id]
	if !found {
		e = &entry{id: n.Id}
		a.arena[n.Id] = e
	}
	if !found || e.placeholder {
		a.records += 1
	}

	if found && !e.placeholder && e.parentId != nil && !sameParent(e.parentId, n.ParentId) {
		if old, ok := a.arena[*e.parentId]; ok {
			old.children = slices.DeleteFunc(old.children, func(c int) bool { return c == n.Id })
		}
	}

	e.label = n.Label
	if e.label == "" {
		e.label = defaultLabel(n.Id)
	}
	e.payload = n.Payload
	e.placeholder = false
	e.parentId = nil
	if n.ParentId != nil {
		pid := *n.ParentId
		e.parentId = &pid
	}

	if n.ParentId == nil {
		switch {
		case !a.hasRoot:
			a.rootId, a.hasRoot = n.Id, true
		case a.rootId != n.Id:
			a.logger.Printf(
				"WARNING: multiple roots are listed: node %d has no parent, but node %d is the root already. keep %d as the root.",
				n.Id, a.rootId, a.rootId,
			)
		}
		return
	}

	if a.hasRoot && a.rootId == n.Id {
		a.hasRoot = false
	}

	pid := *n.ParentId
	if pid == n.Id {
		a.logger.Printf("WARNING: node %d is listed as its own parent. ignored.", n.Id)
		return
	}
	parent, ok := a.arena[pid]
	if !ok {
		parent = &entry{id: pid, label: defaultLabel(pid), placeholder: true}
		a.arena[pid] = parent
	}
	if !slices.Contains(parent.children, n.Id) {
		parent.children = append(parent.children, n.Id)
	}
}

// publish rebuilds the tree from the arena and returns it.
//
// Nodes added by AddLocal and not listed yet are grafted again.
func (a *Assembler) publish() *TreeNode {
	var root *TreeNode
	if a.hasRoot {
		root = a.build(a.rootId, map[int]struct{}{})
	}

	if root != nil {
		for _, n := range a.local {
			if e, ok := a.arena[n.Id]; ok && !e.placeholder {
				continue
			}
			if _, ok := root.Find(n.Id); ok {
				continue
			}
			if t, _, ok := insert(root, n); ok {
				root = t
			}
		}
	}

	a.tree = root
	a.published += 1
	return root
}

func (a *Assembler) build(id int, visited map[int]struct{}) *TreeNode {
	if _, ok := a.removed[id]; ok {
		return nil
	}
	if _, ok := visited[id]; ok {
		a.logger.Printf("WARNING: node %d is listed in a cycle. ignored.", id)
		return nil
	}
	visited[id] = struct{}{}

	e := a.arena[id]
	n := &TreeNode{
		Id:       e.id,
		Name:     e.label,
		Item:     e.payload,
		Children: make([]*TreeNode, 0, len(e.children)),
	}
	if e.parentId != nil {
		pid := *e.parentId
		n.ParentId = &pid
	}
	for _, cid := range e.children {
		if c := a.build(cid, visited); c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Tree returns the latest published tree.
//
// It is nil before the first publication or while no root is listed.
// Read it again after AddLocal, RemoveLocal or Integrate; a tree once
// returned is not updated.
func (a *Assembler) Tree() *TreeNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree
}

// Published returns how many times a tree has been published.
func (a *Assembler) Published() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.published
}

// Len returns the number of records integrated, excluding placeholders.
func (a *Assembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}

// PagesIntegrated returns the number of pages merged so far.
func (a *Assembler) PagesIntegrated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.integrated
}

// LocalItems returns nodes added by AddLocal and not removed, in the order added.
func (a *Assembler) LocalItems() []Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.local)
}

func sameParent(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
