// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int
		perPage    int
		want       int
	}{
		{"zero items", 0, 10, 1},
		{"less than one page", 5, 10, 1},
		{"exactly one page", 10, 10, 1},
		{"one item over", 11, 10, 2},
		{"multiple pages", 25, 10, 3},
		{"exact multiple", 30, 10, 3},
		{"zero per page", 10, 0, 1},
		{"negative per page", 10, -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotalPages(tt.totalItems, tt.perPage)
			if got != tt.want {
				t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tt.totalItems, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		want       int
	}{
		{"valid page", 3, 5, 3},
		{"first page", 1, 5, 1},
		{"last page", 5, 5, 5},
		{"below minimum", 0, 5, 1},
		{"negative page", -1, 5, 1},
		{"above maximum", 10, 5, 5},
		{"way above maximum", 100, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampPage(tt.page, tt.totalPages)
			if got != tt.want {
				t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		totalItems     int
		perPage        int
		wantPage       int
		wantTotalPages int
	}{
		{"valid page", 2, 50, 10, 2, 5},
		{"page too high", 10, 50, 10, 5, 5},
		{"page too low", 0, 50, 10, 1, 5},
		{"single page", 1, 5, 10, 1, 1},
		{"empty list", 1, 0, 10, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPage, gotTotal := NormalizePagination(tt.page, tt.totalItems, tt.perPage)
			if gotPage != tt.wantPage || gotTotal != tt.wantTotalPages {
				t.Errorf("NormalizePagination(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.totalItems, tt.perPage, gotPage, gotTotal, tt.wantPage, tt.wantTotalPages)
			}
		})
	}
}

func TestParsePageParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"valid page", "page=3", 3},
		{"first page", "page=1", 1},
		{"no param", "", 1},
		{"empty param", "page=", 1},
		{"invalid param", "page=abc", 1},
		{"zero page", "page=0", 1},
		{"negative page", "page=-1", 1},
		{"large page", "page=999", 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got := ParsePageParam(req)
			if got != tt.want {
				t.Errorf("ParsePageParam() with query %q = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    int64
		wantErr bool
	}{
		{"valid id", "123", 123, false},
		{"zero id", "0", 0, false},
		{"large id", "9999999999", 9999999999, false},
		{"empty id", "", 0, true},
		{"invalid id", "abc", 0, true},
		{"negative id", "-1", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, err := ParseIDParam(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIDParam() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseIDParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		totalItems  int64
		perPage     int
		wantPage    int
		wantPages   int
		wantHasPrev bool
		wantHasNext bool
	}{
		{"first page", 1, 50, 10, 1, 5, false, true},
		{"middle page", 3, 50, 10, 3, 5, true, true},
		{"last page", 5, 50, 10, 5, 5, true, false},
		{"page beyond end clamps", 9, 50, 10, 5, 5, true, false},
		{"single page", 1, 5, 10, 1, 1, false, false},
		{"empty", 1, 0, 10, 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.page, tt.totalItems, tt.perPage, "/admin/posts", nil)

			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.HasPrev() != tt.wantHasPrev {
				t.Errorf("HasPrev() = %v, want %v", p.HasPrev(), tt.wantHasPrev)
			}
			if p.HasNext() != tt.wantHasNext {
				t.Errorf("HasNext() = %v, want %v", p.HasNext(), tt.wantHasNext)
			}
		})
	}
}

func TestPaginateKeepsFilters(t *testing.T) {
	params := url.Values{
		"status": []string{"pending"},
		"page":   []string{"2"}, // never carried into links
		"empty":  []string{""},  // dropped
	}

	p := Paginate(1, 50, 10, "/admin/comments", params)

	want := "/admin/comments?status=pending&page=3"
	if got := p.URL(3); got != want {
		t.Errorf("URL(3) = %q, want %q", got, want)
	}
}

func TestPaginationURLs(t *testing.T) {
	p := Paginate(3, 50, 10, "/admin/users", nil)

	if got := p.PrevURL(); got != "/admin/users?page=2" {
		t.Errorf("PrevURL() = %q, want /admin/users?page=2", got)
	}
	if got := p.NextURL(); got != "/admin/users?page=4" {
		t.Errorf("NextURL() = %q, want /admin/users?page=4", got)
	}
	if !p.ShouldShow() {
		t.Error("ShouldShow() = false, want true for multi-page")
	}
	if single := Paginate(1, 5, 10, "/admin/users", nil); single.ShouldShow() {
		t.Error("ShouldShow() = true, want false for single page")
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"small set shows all", 2, 4, []int{1, 2, 3, 4}},
		{"start of long set", 1, 10, []int{1, 2, 3, 0, 10}},
		{"middle of long set", 6, 12, []int{1, 0, 4, 5, 6, 7, 8, 0, 12}},
		{"end of long set", 10, 10, []int{1, 0, 8, 9, 10}},
		{"adjacent gap collapses", 4, 8, []int{1, 2, 3, 4, 5, 6, 0, 8}},
		{"single page", 1, 1, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageWindow(tt.current, tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("pageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("pageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
				}
			}
		})
	}
}

func TestPaginationSummary(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalItems int64
		perPage    int
		want       string
	}{
		{"first page", 1, 50, 10, "1-10 of 50"},
		{"middle page", 3, 50, 10, "21-30 of 50"},
		{"last page partial", 5, 45, 10, "41-45 of 45"},
		{"single item", 1, 1, 10, "1-1 of 1"},
		{"empty", 1, 0, 10, "0 of 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.page, tt.totalItems, tt.perPage, "/admin/posts", nil)
			if got := p.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
