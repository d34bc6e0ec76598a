// Package pages defines the envelope of paged collections in the ChRIS API.
package pages

import (
	"net/url"
	"strconv"
)

// Collection is one page of a listing.
type Collection[T any] struct {
	// number of items in the whole collection, not in this page.
	Count int `json:"count"`

	// URL of the next page. nil on the last page.
	Next *string `json:"next"`

	// URL of the previous page. nil on the first page.
	Previous *string `json:"previous"`

	Results []T `json:"results"`
}

// HasNext reports whether another page follows this.
func (c Collection[T]) HasNext() bool {
	return c.Next != nil && *c.Next != ""
}

// Window is a range of a collection to be listed.
type Window struct {
	Offset int
	Limit  int
}

// Apply sets the window as query parameters.
//
// Zero Limit means the default page size of the server.
func (w Window) Apply(q url.Values) {
	if 0 < w.Limit {
		q.Set("limit", strconv.Itoa(w.Limit))
	}
	if 0 < w.Offset {
		q.Set("offset", strconv.Itoa(w.Offset))
	}
}
