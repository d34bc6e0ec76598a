package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
)

type FindPluginParameter struct {
	// exact name of plugins. Empty means any.
	Name string

	// exact version of plugins. Empty means any.
	Version string

	// type of plugins: "fs", "ds" or "ts". Empty means any.
	Type string

	pages.Window
}

func (c *client) FindPlugins(ctx context.Context, query FindPluginParameter) (pages.Collection[plugins.Detail], error) {
	q := url.Values{}
	query.Window.Apply(q)
	for key, value := range map[string]string{
		"name":    query.Name,
		"version": query.Version,
		"type":    query.Type,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}

	resp, err := c.get(ctx, q, "plugins", "search")
	if err != nil {
		return pages.Collection[plugins.Detail]{}, err
	}
	defer resp.Body.Close()

	found := pages.Collection[plugins.Detail]{}
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return pages.Collection[plugins.Detail]{}, err
	}
	return found, nil
}
