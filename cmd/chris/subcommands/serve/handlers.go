package serve

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	apierr "github.com/fnndsc/chrisctl/pkg/api/types/errors"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/feedtree"
	"github.com/labstack/echo/v4"
)

const (
	paramFeedId     = "feedId"
	paramInstanceId = "instanceId"
)

// CreateInstanceRequest is the body of requests creating plugin instances.
type CreateInstanceRequest struct {
	// name or id of the plugin to be run.
	Plugin string `json:"plugin"`

	// version of the plugin, when Plugin is a name.
	PluginVersion string `json:"pluginVersion,omitempty"`

	PreviousId *int           `json:"previousId,omitempty"`
	Title      string         `json:"title,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}

// SelectedResponse is the body of responses of the selection.
type SelectedResponse struct {
	Selected *feedtree.TreeNode `json:"selected"`
}

func Routes(e *echo.Echo, sessions *Sessions, client rest.ChrisClient) {
	e.GET("/api/feeds/:feedId/tree", GetTreeHandler(sessions))
	e.POST("/api/feeds/:feedId/instances", PostInstanceHandler(sessions, client))
	e.DELETE("/api/feeds/:feedId/instances/:instanceId", DeleteInstanceHandler(sessions, client))
	e.GET("/api/feeds/:feedId/selected", GetSelectedHandler(sessions))
	e.DELETE("/api/feeds/:feedId", DeleteSessionHandler(sessions))
}

func pathId(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest(fmt.Sprintf("%s should be a positive integer", name), err)
	}
	return id, nil
}

// upstreamError converts errors from CUBE into responses.
func upstreamError(err error) error {
	if errors.Is(err, rest.ErrNotFound) {
		return apierr.NewErrorMessage(http.StatusNotFound, err.Error(), apierr.WithError(err))
	}
	return apierr.BadGateway(err)
}

// GetTreeHandler responds the tree of the feed.
//
// The session of the feed is started when it is the first request.
func GetTreeHandler(sessions *Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		feedId, err := pathId(c, paramFeedId)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sessions.Open(feedId).View())
	}
}

// PostInstanceHandler runs a plugin, and shows the new instance in the tree of the feed.
func PostInstanceHandler(sessions *Sessions, client rest.ChrisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		feedId, err := pathId(c, paramFeedId)
		if err != nil {
			return err
		}

		req := new(CreateInstanceRequest)
		if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
			return apierr.BadRequest("body should be a JSON object", err)
		}
		if req.Plugin == "" {
			return apierr.BadRequest(`"plugin" is required`, nil)
		}

		ctx := c.Request().Context()
		pluginId, err := common.ResolvePlugin(ctx, client, req.Plugin, req.PluginVersion)
		if err != nil {
			if errors.Is(err, common.ErrPluginNotResolved) {
				return apierr.BadRequest(err.Error(), err)
			}
			return upstreamError(err)
		}

		created, err := client.CreatePluginInstance(ctx, pluginId, instances.Spec{
			PreviousId: req.PreviousId,
			Title:      req.Title,
			Params:     req.Params,
		})
		if err != nil {
			return upstreamError(err)
		}

		if created.FeedId == 0 || created.FeedId == feedId {
			sessions.Open(feedId).Add(created)
		} else {
			c.Logger().Warnf(
				"plugin instance #%d is created in feed #%d, not in #%d",
				created.Id, created.FeedId, feedId,
			)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// DeleteInstanceHandler deletes a plugin instance, and hides it from the tree of the feed.
func DeleteInstanceHandler(sessions *Sessions, client rest.ChrisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		feedId, err := pathId(c, paramFeedId)
		if err != nil {
			return err
		}
		instanceId, err := pathId(c, paramInstanceId)
		if err != nil {
			return err
		}

		if err := client.DeletePluginInstance(c.Request().Context(), instanceId); err != nil {
			return upstreamError(err)
		}
		sessions.Open(feedId).Remove(instanceId)
		return c.NoContent(http.StatusNoContent)
	}
}

// GetSelectedHandler responds the node selected in the tree of the feed.
func GetSelectedHandler(sessions *Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		feedId, err := pathId(c, paramFeedId)
		if err != nil {
			return err
		}
		s, ok := sessions.Get(feedId)
		if !ok {
			return apierr.NotFound(fmt.Sprintf("feed #%d is not opened", feedId))
		}
		return c.JSON(http.StatusOK, SelectedResponse{Selected: s.Selected()})
	}
}

// DeleteSessionHandler discards the session of the feed.
func DeleteSessionHandler(sessions *Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		feedId, err := pathId(c, paramFeedId)
		if err != nil {
			return err
		}
		if !sessions.Discard(feedId) {
			return apierr.NotFound(fmt.Sprintf("feed #%d is not opened", feedId))
		}
		return c.NoContent(http.StatusNoContent)
	}
}
