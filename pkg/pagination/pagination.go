// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses list query parameters and builds the "meta"
// block of paginated responses.
package pagination

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1

	// MaxSearchLen bounds the free-text search term.
	MaxSearchLen = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Params is a page request. Page is 1-indexed.
//
// Sort is a resource-defined key, never a column name; callers restrict it
// with [Params.SortedBy] before building a query.
type Params struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// Offset returns the SQL OFFSET for the page.
func (params Params) Offset() int {
	if params.Page <= 1 {
		return 0
	}
	return (params.Page - 1) * params.Limit
}

// Normalize clamps out-of-range values to the defaults.
func (params Params) Normalize() Params {
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	if params.Limit < 1 || params.Limit > MaxLimit {
		params.Limit = DefaultLimit
	}

	params.Search = strings.TrimSpace(params.Search)
	if len(params.Search) > MaxSearchLen {
		params.Search = params.Search[:MaxSearchLen]
	}

	params.Sort = strings.TrimSpace(params.Sort)
	if strings.EqualFold(strings.TrimSpace(params.Order), OrderAsc) {
		params.Order = OrderAsc
	} else {
		params.Order = OrderDesc
	}
	return params
}

// SortedBy keeps Sort when it is one of allowed and otherwise falls back.
func (params Params) SortedBy(fallback string, allowed ...string) Params {
	if !slices.Contains(allowed, params.Sort) {
		params.Sort = fallback
	}
	return params
}

// Ascending reports whether the page is ordered smallest first.
func (params Params) Ascending() bool {
	return params.Order == OrderAsc
}

// Meta is the pagination block of list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta describes the page params within a result of total items.
func NewMeta(params Params, total int) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Page is one page of a list result.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// NewPage wraps items, never returning a nil Items slice.
func NewPage[T any](items []T, params Params, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Meta: NewMeta(params, total)}
}

// FromRequest reads "page", "limit", "search", "sortBy" and "sortOrder" from
// the query string. Invalid values fall back to the defaults.
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()

	return Params{
		Page:   intParam(query.Get("page"), DefaultPage),
		Limit:  intParam(query.Get("limit"), DefaultLimit),
		Search: query.Get("search"),
		Sort:   query.Get("sortBy"),
		Order:  query.Get("sortOrder"),
	}.Normalize()
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
