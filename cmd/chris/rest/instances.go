package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
)

func (c *client) GetPluginInstance(ctx context.Context, instanceId int) (instances.Detail, error) {
	resp, err := c.get(ctx, nil, "plugins", "instances", strconv.Itoa(instanceId))
	if err != nil {
		return instances.Detail{}, err
	}
	defer resp.Body.Close()

	var inst instances.Detail
	if err := unmarshalJsonResponse(
		resp, &inst,
		MessageFor{
			Status4xx: fmt.Sprintf("plugin instance #%d is not found", instanceId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return instances.Detail{}, err
	}
	return inst, nil
}

func (c *client) CreatePluginInstance(
	ctx context.Context, pluginId int, spec instances.Spec,
) (instances.Detail, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return instances.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.apipath("plugins", strconv.Itoa(pluginId), "instances"),
		bytes.NewReader(body),
	)
	if err != nil {
		return instances.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return instances.Detail{}, err
	}
	defer resp.Body.Close()

	var created instances.Detail
	if err := unmarshalJsonResponse(
		resp, &created,
		MessageFor{
			Status4xx: fmt.Sprintf("plugin #%d cannot be run", pluginId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return instances.Detail{}, err
	}
	return created, nil
}

func (c *client) DeletePluginInstance(ctx context.Context, instanceId int) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete,
		c.apipath("plugins", "instances", strconv.Itoa(instanceId)),
		nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("plugin instance #%d cannot be deleted", instanceId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}
