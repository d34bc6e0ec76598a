package serve

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/fnndsc/chrisctl/cmd/chris/feedview"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
)

// View is a snapshot of a Session.
type View struct {
	FeedId             int                `json:"feedId"`
	Tree               *feedtree.TreeNode `json:"tree"`
	TotalCount         int                `json:"totalCount"`
	ChunkSize          int                `json:"chunkSize"`
	HasNextPage        bool               `json:"hasNextPage"`
	IsFetchingNextPage bool               `json:"isFetchingNextPage"`
	Published          int                `json:"published"`

	// Error is the reason why listing has stopped, if any.
	Error string `json:"error,omitempty"`
}

// Session is a tree of a feed, kept assembled while clients are looking.
//
// On start, it lists all plugin instances of the feed in background.
type Session struct {
	FeedId int

	logger *log.Logger
	query  *feedtree.Query
	asm    *feedtree.Assembler

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	bg     sync.WaitGroup

	mu       sync.Mutex
	selected *feedtree.TreeNode
	err      error
}

// NewSession starts a session of the feed.
//
// The session stops listing when ctx is done or Close is called.
func NewSession(ctx context.Context, logger *log.Logger, feedId int, fetch feedtree.Fetcher) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		FeedId: feedId,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.asm = feedtree.New(
		feedtree.WithLogger(logger),
		feedtree.WithSelector(s.onSelect),
	)
	s.query = feedtree.NewQuery(fetch, s.asm)

	go func() {
		defer close(s.done)
		s.fetchAll()
	}()
	return s
}

func (s *Session) onSelect(n *feedtree.TreeNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = n
}

func (s *Session) fetchAll() {
	err := s.query.FetchAll(s.ctx)
	switch {
	case err == nil, errors.Is(err, feedtree.ErrFetchInFlight):
		return
	case s.ctx.Err() != nil:
		return
	}
	s.logger.Printf("listing feed #%d has stopped: %v", s.FeedId, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// View returns the current state of the session.
func (s *Session) View() View {
	v := View{
		FeedId:             s.FeedId,
		Tree:               s.asm.Tree(),
		TotalCount:         s.query.TotalCount(),
		ChunkSize:          s.query.ChunkSize(),
		HasNextPage:        s.query.HasNextPage(),
		IsFetchingNextPage: s.query.IsFetchingNextPage(),
		Published:          s.asm.Published(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		v.Error = s.err.Error()
	}
	return v
}

// Selected returns the node selected by the last Add or Remove.
//
// It is nil when nothing is selected.
func (s *Session) Selected() *feedtree.TreeNode {
	s.mu.Lock()
	sel := s.selected
	s.mu.Unlock()
	if sel == nil {
		return nil
	}
	if n, ok := s.asm.Tree().Find(sel.Id); ok {
		return n
	}
	return sel
}

// Add shows a plugin instance created by this server in the tree, and selects it.
//
// It refreshes the count of instances in background.
func (s *Session) Add(pi instances.Detail) {
	s.asm.AddLocal(feedview.NodeOf(pi))
	s.refresh()
}

// Remove hides a plugin instance deleted by this server and its descendants,
// and selects its parent.
//
// It refreshes the count of instances in background.
func (s *Session) Remove(instanceId int) {
	s.asm.RemoveLocal(instanceId)
	s.refresh()
}

// refresh reads the count of instances again, and lists instances not listed yet.
func (s *Session) refresh() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.query.RefreshCount(s.ctx); err != nil {
			if s.ctx.Err() == nil {
				s.logger.Printf("refreshing count of feed #%d is failed: %v", s.FeedId, err)
			}
			return
		}
		if s.query.HasNextPage() {
			s.fetchAll()
		}
	}()
}

// Wait blocks until the session lists all instances, or stops listing.
//
// It returns the error which stopped listing.
func (s *Session) Wait() error {
	<-s.done
	s.bg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops listing, and waits it.
func (s *Session) Close() {
	s.cancel()
	<-s.done
	s.bg.Wait()
}

// Sessions holds a Session per feed.
type Sessions struct {
	ctx        context.Context
	logger     *log.Logger
	newFetcher func(feedId int) feedtree.Fetcher

	mu       sync.Mutex
	sessions map[int]*Session
}

// NewSessions returns an empty registry of sessions.
//
// Sessions opened from it stop when ctx is done.
func NewSessions(ctx context.Context, logger *log.Logger, newFetcher func(feedId int) feedtree.Fetcher) *Sessions {
	return &Sessions{
		ctx:        ctx,
		logger:     logger,
		newFetcher: newFetcher,
		sessions:   map[int]*Session{},
	}
}

// Open returns the session of the feed, starting a new one if there are none.
func (ss *Sessions) Open(feedId int) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if s, ok := ss.sessions[feedId]; ok {
		return s
	}
	s := NewSession(ss.ctx, ss.logger, feedId, ss.newFetcher(feedId))
	ss.sessions[feedId] = s
	return s
}

// Get returns the session of the feed, if any.
func (ss *Sessions) Get(feedId int) (*Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sessions[feedId]
	return s, ok
}

// Discard closes and forgets the session of the feed.
//
// It returns false when there are no such session.
func (ss *Sessions) Discard(feedId int) bool {
	ss.mu.Lock()
	s, ok := ss.sessions[feedId]
	delete(ss.sessions, feedId)
	ss.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Close closes all sessions.
func (ss *Sessions) Close() {
	ss.mu.Lock()
	all := ss.sessions
	ss.sessions = map[int]*Session{}
	ss.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
