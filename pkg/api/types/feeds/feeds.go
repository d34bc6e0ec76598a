package feeds

import "github.com/fnndsc/chrisctl/pkg/utils/rfctime"

// Detail is a feed: a tree of plugin instances rooted by a single "fs" instance.
type Detail struct {
	Id               int             `json:"id"`
	Name             string          `json:"name"`
	CreationDate     rfctime.RFC3339 `json:"creation_date"`
	ModificationDate rfctime.RFC3339 `json:"modification_date"`
	OwnerUsername    string          `json:"owner_username"`
	Public           bool            `json:"public"`

	Jobs
}

// Jobs counts plugin instances of a feed by status.
type Jobs struct {
	Created     int `json:"created_jobs"`
	Waiting     int `json:"waiting_jobs"`
	Scheduled   int `json:"scheduled_jobs"`
	Started     int `json:"started_jobs"`
	Registering int `json:"registering_jobs"`
	Finished    int `json:"finished_jobs"`
	Errored     int `json:"errored_jobs"`
	Cancelled   int `json:"cancelled_jobs"`
}

// Running returns the number of plugin instances not settled yet.
func (j Jobs) Running() int {
	return j.Created + j.Waiting + j.Scheduled + j.Started + j.Registering
}
