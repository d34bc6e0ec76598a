package plugins

import "github.com/fnndsc/chrisctl/pkg/utils/rfctime"

// Type of plugins.
const (
	// fs plugins create data from nothing. They root feeds.
	TypeFS = "fs"

	// ds plugins transform data of their previous instance.
	TypeDS = "ds"

	// ts plugins join data of multiple instances.
	TypeTS = "ts"
)

type Detail struct {
	Id           int             `json:"id"`
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	DockImage    string          `json:"dock_image"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	CreationDate rfctime.RFC3339 `json:"creation_date"`
}
