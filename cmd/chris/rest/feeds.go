package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fnndsc/chrisctl/pkg/api/types/feeds"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
)

type FindFeedParameter struct {
	// part of feed names. Empty means all feeds.
	Name string

	pages.Window
}

func (c *client) FindFeeds(ctx context.Context, query FindFeedParameter) (pages.Collection[feeds.Detail], error) {
	q := url.Values{}
	query.Window.Apply(q)

	path := []string{}
	if query.Name != "" {
		q.Set("name", query.Name)
		path = append(path, "search")
	}

	resp, err := c.get(ctx, q, path...)
	if err != nil {
		return pages.Collection[feeds.Detail]{}, err
	}
	defer resp.Body.Close()

	found := pages.Collection[feeds.Detail]{}
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return pages.Collection[feeds.Detail]{}, err
	}
	return found, nil
}

func (c *client) GetFeed(ctx context.Context, feedId int) (feeds.Detail, error) {
	resp, err := c.get(ctx, nil, strconv.Itoa(feedId))
	if err != nil {
		return feeds.Detail{}, err
	}
	defer resp.Body.Close()

	var feed feeds.Detail
	if err := unmarshalJsonResponse(
		resp, &feed,
		MessageFor{
			Status4xx: fmt.Sprintf("feed #%d is not found", feedId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return feeds.Detail{}, err
	}
	return feed, nil
}

func (c *client) ListFeedPluginInstances(
	ctx context.Context, feedId int, offset int, limit int,
) (pages.Collection[instances.Detail], error) {
	q := url.Values{}
	pages.Window{Offset: offset, Limit: limit}.Apply(q)

	resp, err := c.get(ctx, q, strconv.Itoa(feedId), "plugininstances")
	if err != nil {
		return pages.Collection[instances.Detail]{}, err
	}
	defer resp.Body.Close()

	listed := pages.Collection[instances.Detail]{}
	if err := unmarshalJsonResponse(
		resp, &listed,
		MessageFor{
			Status4xx: fmt.Sprintf("plugin instances of feed #%d cannot be listed", feedId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return pages.Collection[instances.Detail]{}, err
	}
	return listed, nil
}
