package feedview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fnndsc/chrisctl/cmd/chris/feedview"
	"github.com/fnndsc/chrisctl/cmd/chris/rest/mock"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
	"github.com/fnndsc/chrisctl/pkg/utils/pointer"
	"github.com/google/go-cmp/cmp"
)

func TestNodeOf(t *testing.T) {
	theory := func(pi instances.Detail, expected feedtree.Node) func(*testing.T) {
		return func(t *testing.T) {
			actual := feedview.NodeOf(pi)
			if !cmp.Equal(actual, expected) {
				t.Errorf("unexpected node: %s", cmp.Diff(actual, expected))
			}
		}
	}

	t.Run("a root instance is labelled by its title", theory(
		instances.Detail{Id: 1, Title: "dicoms", PluginName: "pl-dircopy"},
		feedtree.Node{
			Id: 1, Label: "dicoms",
			Payload: instances.Detail{Id: 1, Title: "dicoms", PluginName: "pl-dircopy"},
		},
	))

	t.Run("an untitled instance is labelled by its plugin name, and refers its previous", theory(
		instances.Detail{Id: 3, PreviousId: pointer.Ref(1), PluginName: "pl-dcm2niix"},
		feedtree.Node{
			Id: 3, ParentId: pointer.Ref(1), Label: "pl-dcm2niix",
			Payload: instances.Detail{Id: 3, PreviousId: pointer.Ref(1), PluginName: "pl-dcm2niix"},
		},
	))

	t.Run("an instance without names is labelled by its id", theory(
		instances.Detail{Id: 7, PreviousId: pointer.Ref(3)},
		feedtree.Node{
			Id: 7, ParentId: pointer.Ref(3), Label: "Node 7",
			Payload: instances.Detail{Id: 7, PreviousId: pointer.Ref(3)},
		},
	))
}

func TestFetcher(t *testing.T) {
	t.Run("it lists instances of the feed, in the window requested", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.ListFeedPluginInstances = func(ctx context.Context, feedId, offset, limit int) (pages.Collection[instances.Detail], error) {
			return pages.Collection[instances.Detail]{
				Count: 42,
				Results: []instances.Detail{
					{Id: 21, PreviousId: pointer.Ref(10), Title: "x"},
					{Id: 22, PreviousId: pointer.Ref(11), Title: "y"},
				},
			}, nil
		}

		page, err := feedview.Fetcher(client, 5)(context.Background(), 20, 20)
		if err != nil {
			t.Fatal(err)
		}

		if page.TotalCount != 42 {
			t.Errorf("total count: (actual, expected) = (%d, %d)", page.TotalCount, 42)
		}
		ids := []int{}
		for _, n := range page.Items {
			ids = append(ids, n.Id)
		}
		if !cmp.Equal(ids, []int{21, 22}) {
			t.Errorf("unexpected items: %v", ids)
		}
		expectedCalls := []mock.ListFeedPluginInstancesArgs{{FeedId: 5, Offset: 20, Limit: 20}}
		if !cmp.Equal(client.Calls.ListFeedPluginInstances, expectedCalls) {
			t.Errorf("unexpected calls: %s", cmp.Diff(client.Calls.ListFeedPluginInstances, expectedCalls))
		}
	})

	t.Run("it passes errors through", func(t *testing.T) {
		expectedErr := errors.New("fake error")
		client := mock.New(t)
		client.Impl.ListFeedPluginInstances = func(ctx context.Context, feedId, offset, limit int) (pages.Collection[instances.Detail], error) {
			return pages.Collection[instances.Detail]{}, expectedErr
		}

		if _, err := feedview.Fetcher(client, 5)(context.Background(), 0, 1); !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDotStyle(t *testing.T) {
	for status, expected := range map[string]string{
		instances.StatusSucceeded: `color="#007700"`,
		instances.StatusFailed:    `color=red`,
		instances.StatusCancelled: `color=gray`,
		instances.StatusStarted:   `color=orange`,
		instances.StatusCreated:   `color=orange`,
	} {
		t.Run("status "+status, func(t *testing.T) {
			n := &feedtree.TreeNode{Id: 1, Item: instances.Detail{Id: 1, Status: status}}
			if actual := feedview.DotStyle(n); actual != expected {
				t.Errorf("(actual, expected) = (%s, %s)", actual, expected)
			}
		})
	}

	t.Run("placeholders are dashed", func(t *testing.T) {
		if actual := feedview.DotStyle(&feedtree.TreeNode{Id: 9}); actual != `style=dashed color=gray` {
			t.Errorf("unexpected style: %s", actual)
		}
	})
}
