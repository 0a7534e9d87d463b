package jsonapi

import (
	"net/url"
	"strconv"
)

// DefaultPerPage matches the fixed log table page size.
const DefaultPerPage = 10

// Pagination describes the page position of a collection response.
type Pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPagination clamps page into [1, TotalPages].
func NewPagination(total, page, perPage int) Pagination {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	p := Pagination{Total: total, Page: page, PerPage: perPage}
	if p.Page < 1 {
		p.Page = 1
	}
	if last := p.TotalPages(); p.Page > last {
		p.Page = last
	}
	return p
}

// TotalPages returns ceil(Total / PerPage), minimum 1.
func (p Pagination) TotalPages() int {
	if p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Meta returns the pagination block carried in response metadata.
func (p Pagination) Meta() Meta {
	return Meta{
		"total":    p.Total,
		"page":     p.Page,
		"per_page": p.PerPage,
		"pages":    p.TotalPages(),
	}
}

// ParsePage reads the page query parameter, defaulting to 1.
func ParsePage(query url.Values) int {
	if v := query.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
