// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination slices in-memory lists into pages for API list endpoints.
//
// # Overview
//
// The storefront keeps its lists (notifications, novels) in memory, so a page
// is a window over a slice rather than a SQL OFFSET.
package pagination

import (
	"net/http"

	"github.com/taibuivan/carta/pkg/convert"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// Params holds the parsed page (1-indexed) and limit.
type Params struct {
	Page  int
	Limit int
}

// Window returns the half-open [start, end) range of a list of length total
// covered by this page. Pages past the end yield an empty window.
func (p Params) Window(total int) (start, end int) {
	start = min(max(p.Page-1, 0)*p.Limit, total)
	end = min(start+p.Limit, total)
	return start, end
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta describes the page p of a list holding total items.
func NewMeta(p Params, total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Page returns the items of list covered by p together with their metadata.
func Page[T any](list []T, p Params) ([]T, Meta) {
	start, end := p.Window(len(list))
	return list[start:end], NewMeta(p, len(list))
}

// FromRequest reads "page" and "limit", clamping bad values to the defaults.
func FromRequest(request *http.Request) Params {
	values := request.URL.Query()
	page := convert.IntOr(values.Get("page"), DefaultPage)
	limit := convert.IntOr(values.Get("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}
