package models

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// ListParams selects a page of records and narrows it with filters.
// Filters are sent to the backend verbatim as query parameters and are
// interpreted by each resource when the list is served locally.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Normalize clamps page and limit to their defaults and bounds.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset is the number of records that precede the requested page.
func (p ListParams) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Query renders the params as URL query values.
func (p ListParams) Query() map[string]string {
	p = p.Normalize()
	q := map[string]string{
		"page":  strconv.Itoa(p.Page),
		"limit": strconv.Itoa(p.Limit),
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	for k, v := range p.Filters {
		if v != "" {
			q[k] = v
		}
	}
	return q
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
}

// TotalPagesFor returns ceil(total/limit), zero when limit is not positive.
func TotalPagesFor(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Source tells where the records of a page came from.
type Source string

const (
	SourceServer Source = "server"
	SourceMerged Source = "merged"
	SourceLocal  Source = "local"
)

type Page[R any] struct {
	Items      []R
	Pagination Pagination
	Source     Source
}

// Count is the number of records on this page.
func (p Page[R]) Count() int { return len(p.Items) }
