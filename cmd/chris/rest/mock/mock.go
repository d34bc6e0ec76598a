package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/pkg/api/types/feeds"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
)

type AuthTokenArgs struct {
	Username string
	Password string
}

type ListFeedPluginInstancesArgs struct {
	FeedId int
	Offset int
	Limit  int
}

type CreatePluginInstanceArgs struct {
	PluginId int
	Spec     instances.Spec
}

func New(t *testing.T) *mockChrisClient {
	return &mockChrisClient{t: t}
}

// mockChrisClient is a ChrisClient for tests.
//
// Set functions to Impl for methods to be called. Calling a method without
// Impl fails the test. Arguments of each call are recorded in Calls.
//
// It can be called from multiple goroutines.
type mockChrisClient struct {
	t  *testing.T
	mu sync.Mutex

	Impl struct {
		AuthToken               func(ctx context.Context, username, password string) (string, error)
		FindFeeds               func(ctx context.Context, query rest.FindFeedParameter) (pages.Collection[feeds.Detail], error)
		GetFeed                 func(ctx context.Context, feedId int) (feeds.Detail, error)
		ListFeedPluginInstances func(ctx context.Context, feedId, offset, limit int) (pages.Collection[instances.Detail], error)
		GetPluginInstance       func(ctx context.Context, instanceId int) (instances.Detail, error)
		CreatePluginInstance    func(ctx context.Context, pluginId int, spec instances.Spec) (instances.Detail, error)
		DeletePluginInstance    func(ctx context.Context, instanceId int) error
		FindPlugins             func(ctx context.Context, query rest.FindPluginParameter) (pages.Collection[plugins.Detail], error)
	}
	Calls struct {
		AuthToken               []AuthTokenArgs
		FindFeeds               []rest.FindFeedParameter
		GetFeed                 []int
		ListFeedPluginInstances []ListFeedPluginInstancesArgs
		GetPluginInstance       []int
		CreatePluginInstance    []CreatePluginInstanceArgs
		DeletePluginInstance    []int
		FindPlugins             []rest.FindPluginParameter
	}
}

var _ rest.ChrisClient = &mockChrisClient{}

// record appends a call, and fails the test when the method is not ready.
func (m *mockChrisClient) record(name string, ready bool, rec func()) {
	m.t.Helper()
	m.mu.Lock()
	rec()
	m.mu.Unlock()
	if !ready {
		m.t.Fatalf("%s is not ready to be called", name)
	}
}

func (m *mockChrisClient) AuthToken(ctx context.Context, username, password string) (string, error) {
	m.t.Helper()
	m.record("AuthToken", m.Impl.AuthToken != nil, func() {
		m.Calls.AuthToken = append(m.Calls.AuthToken, AuthTokenArgs{Username: username, Password: password})
	})
	return m.Impl.AuthToken(ctx, username, password)
}

func (m *mockChrisClient) FindFeeds(ctx context.Context, query rest.FindFeedParameter) (pages.Collection[feeds.Detail], error) {
	m.t.Helper()
	m.record("FindFeeds", m.Impl.FindFeeds != nil, func() {
		m.Calls.FindFeeds = append(m.Calls.FindFeeds, query)
	})
	return m.Impl.FindFeeds(ctx, query)
}

func (m *mockChrisClient) GetFeed(ctx context.Context, feedId int) (feeds.Detail, error) {
	m.t.Helper()
	m.record("GetFeed", m.Impl.GetFeed != nil, func() {
		m.Calls.GetFeed = append(m.Calls.GetFeed, feedId)
	})
	return m.Impl.GetFeed(ctx, feedId)
}

func (m *mockChrisClient) ListFeedPluginInstances(ctx context.Context, feedId, offset, limit int) (pages.Collection[instances.Detail], error) {
	m.t.Helper()
	m.record("ListFeedPluginInstances", m.Impl.ListFeedPluginInstances != nil, func() {
		m.Calls.ListFeedPluginInstances = append(
			m.Calls.ListFeedPluginInstances,
			ListFeedPluginInstancesArgs{FeedId: feedId, Offset: offset, Limit: limit},
		)
	})
	return m.Impl.ListFeedPluginInstances(ctx, feedId, offset, limit)
}

func (m *mockChrisClient) GetPluginInstance(ctx context.Context, instanceId int) (instances.Detail, error) {
	m.t.Helper()
	m.record("GetPluginInstance", m.Impl.GetPluginInstance != nil, func() {
		m.Calls.GetPluginInstance = append(m.Calls.GetPluginInstance, instanceId)
	})
	return m.Impl.GetPluginInstance(ctx, instanceId)
}

func (m *mockChrisClient) CreatePluginInstance(ctx context.Context, pluginId int, spec instances.Spec) (instances.Detail, error) {
	m.t.Helper()
	m.record("CreatePluginInstance", m.Impl.CreatePluginInstance != nil, func() {
		m.Calls.CreatePluginInstance = append(
			m.Calls.CreatePluginInstance,
			CreatePluginInstanceArgs{PluginId: pluginId, Spec: spec},
		)
	})
	return m.Impl.CreatePluginInstance(ctx, pluginId, spec)
}

func (m *mockChrisClient) DeletePluginInstance(ctx context.Context, instanceId int) error {
	m.t.Helper()
	m.record("DeletePluginInstance", m.Impl.DeletePluginInstance != nil, func() {
		m.Calls.DeletePluginInstance = append(m.Calls.DeletePluginInstance, instanceId)
	})
	return m.Impl.DeletePluginInstance(ctx, instanceId)
}

func (m *mockChrisClient) FindPlugins(ctx context.Context, query rest.FindPluginParameter) (pages.Collection[plugins.Detail], error) {
	m.t.Helper()
	m.record("FindPlugins", m.Impl.FindPlugins != nil, func() {
		m.Calls.FindPlugins = append(m.Calls.FindPlugins, query)
	})
	return m.Impl.FindPlugins(ctx, query)
}
