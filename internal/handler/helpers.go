// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ParseIDParam parses the {id} URL parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ParsePageParam parses the "page" query parameter from the request.
// Returns 1 if the parameter is missing, empty, or invalid.
func ParsePageParam(r *http.Request) int {
	str := r.URL.Query().Get("page")
	if str == "" {
		return 1
	}
	page, err := strconv.Atoi(str)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// CalculateTotalPages returns the number of pages needed for totalItems,
// never less than 1.
func CalculateTotalPages(totalItems, perPage int) int {
	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	return totalPages
}

// ClampPage ensures the page number is within the valid range [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// NormalizePagination calculates total pages and clamps the current page to a
// valid range. Returns the normalized page number and total pages.
func NormalizePagination(page, totalItems, perPage int) (normalizedPage, totalPages int) {
	totalPages = CalculateTotalPages(totalItems, perPage)
	normalizedPage = ClampPage(page, totalPages)
	return normalizedPage, totalPages
}

// ListAndCount executes list and count queries, returning combined results.
// This is a generic helper for paginated list endpoints.
func ListAndCount[T any](
	listFn func() ([]T, error),
	countFn func() (int64, error),
) ([]T, int64, error) {
	items, err := listFn()
	if err != nil {
		return nil, 0, err
	}
	total, err := countFn()
	return items, total, err
}
