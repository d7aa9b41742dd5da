// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers for the public site and
// the admin area: posts, comments, engagement, accounts, and moderation.
package handler

import (
	"database/sql"
	"net/http"

	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
)

// DashboardRecentEvents is the number of event log entries shown on the
// admin dashboard.
const DashboardRecentEvents = 10

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Stats        store.DashboardStats
	RecentEvents []store.Event
}

// Dashboard handles GET /admin - aggregate stats and recent events.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.GetDashboardStats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load dashboard stats", "error", err)
		return
	}

	events, err := h.queries.ListRecentEvents(r.Context(), DashboardRecentEvents)
	if err != nil {
		logAndInternalError(w, "failed to load recent events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data: DashboardData{
			Stats:        stats,
			RecentEvents: events,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}
