// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
)

// pageLinkRadius is how many page links appear either side of the
// current page before the window collapses into a gap.
const pageLinkRadius = 2

// Pagination carries what an admin list template needs to render its
// pager: the current link window plus prev/next targets. Filter query
// parameters survive in every generated link.
type Pagination struct {
	Page       int
	TotalPages int
	TotalItems int64
	PerPage    int
	Links      []PageLink
	baseURL    string
	query      string
}

// PageLink is one entry in the pager. Gap entries render as an
// ellipsis instead of a link.
type PageLink struct {
	Page    int
	Current bool
	Gap     bool
}

// Paginate normalizes page against the item count and prepares the
// link window for baseURL. Any "page" entry in extra is discarded so
// links never carry a stale page twice.
func Paginate(page int, totalItems int64, perPage int, baseURL string, extra url.Values) Pagination {
	page, totalPages := NormalizePagination(page, int(totalItems), perPage)

	p := Pagination{
		Page:       page,
		TotalPages: totalPages,
		TotalItems: totalItems,
		PerPage:    perPage,
		baseURL:    baseURL,
	}

	if len(extra) > 0 {
		filters := url.Values{}
		for k, vs := range extra {
			if k == "page" || len(vs) == 0 || vs[0] == "" {
				continue
			}
			filters[k] = vs
		}
		p.query = filters.Encode()
	}

	for _, n := range pageWindow(page, totalPages) {
		p.Links = append(p.Links, PageLink{
			Page:    n,
			Current: n == page,
			Gap:     n == 0,
		})
	}
	return p
}

// pageWindow returns the page numbers to link: the first and last page
// plus pageLinkRadius pages either side of current. A 0 marks where a
// run of skipped pages collapses.
func pageWindow(current, total int) []int {
	var window []int
	last := 0
	for n := 1; n <= total; n++ {
		if n != 1 && n != total && (n < current-pageLinkRadius || n > current+pageLinkRadius) {
			continue
		}
		if last != 0 && n != last+1 {
			window = append(window, 0)
		}
		window = append(window, n)
		last = n
	}
	return window
}

// URL builds the link for one page, keeping any filter parameters.
func (p Pagination) URL(page int) string {
	if p.query != "" {
		return fmt.Sprintf("%s?%s&page=%d", p.baseURL, p.query, page)
	}
	return fmt.Sprintf("%s?page=%d", p.baseURL, page)
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevURL returns the link for the previous page.
func (p Pagination) PrevURL() string { return p.URL(p.Page - 1) }

// NextURL returns the link for the next page.
func (p Pagination) NextURL() string { return p.URL(p.Page + 1) }

// ShouldShow reports whether the pager is worth rendering at all.
func (p Pagination) ShouldShow() bool { return p.TotalPages > 1 }

// Summary describes the visible slice, e.g. "21-40 of 53".
func (p Pagination) Summary() string {
	if p.TotalItems == 0 {
		return "0 of 0"
	}
	start := (p.Page-1)*p.PerPage + 1
	end := p.Page * p.PerPage
	if int64(end) > p.TotalItems {
		end = int(p.TotalItems)
	}
	return fmt.Sprintf("%d-%d of %d", start, end, p.TotalItems)
}
