package instances

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/fnndsc/chrisctl/pkg/utils/rfctime"
)

// Status of plugin instances.
const (
	StatusCreated          = "created"
	StatusWaiting          = "waiting"
	StatusScheduled        = "scheduled"
	StatusStarted          = "started"
	StatusRegisteringFiles = "registeringFiles"
	StatusSucceeded        = "finishedSuccessfully"
	StatusFailed           = "finishedWithError"
	StatusCancelled        = "cancelled"
)

// Detail is a plugin instance: a run of a plugin in a feed.
type Detail struct {
	Id                  int             `json:"id"`
	Title               string          `json:"title"`
	PreviousId          *int            `json:"previous_id"`
	PluginId            int             `json:"plugin_id"`
	PluginName          string          `json:"plugin_name"`
	PluginVersion       string          `json:"plugin_version"`
	PluginType          string          `json:"plugin_type"`
	FeedId              int             `json:"feed_id"`
	StartDate           rfctime.RFC3339 `json:"start_date"`
	EndDate             rfctime.RFC3339 `json:"end_date"`
	Status              string          `json:"status"`
	OwnerUsername       string          `json:"owner_username"`
	ComputeResourceName string          `json:"compute_resource_name"`
}

// Settled reports whether the instance will not change its status anymore.
func (d Detail) Settled() bool {
	switch d.Status {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Spec is a request to create a plugin instance.
//
// It is marshalled into a flat JSON object: parameters are placed
// beside "previous_id" and "title".
type Spec struct {
	PreviousId *int
	Title      string

	// plugin parameters, by name.
	Params map[string]any
}

var reserved = []string{"previous_id", "title"}

func (s Spec) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(s.Params)+2)
	for _, k := range reserved {
		if _, ok := s.Params[k]; ok {
			return nil, fmt.Errorf(`parameter "%s" is reserved`, k)
		}
	}
	maps.Copy(body, s.Params)
	if s.PreviousId != nil {
		body["previous_id"] = *s.PreviousId
	}
	if s.Title != "" {
		body["title"] = s.Title
	}
	return json.Marshal(body)
}
