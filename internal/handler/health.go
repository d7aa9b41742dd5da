// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	queries   *store.Queries
	sm        *scs.SessionManager
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, sm *scs.SessionManager) *HealthHandler {
	return &HealthHandler{
		db:        db,
		queries:   store.New(db),
		sm:        sm,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for unauthenticated
// callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for staff callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains runtime metrics, only shown with ?verbose=true.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
}

// Health handles GET /health. Unauthenticated callers get a bare status;
// staff sessions get check details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase()

	overallStatus := "healthy"
	if dbCheck.Status != "healthy" {
		overallStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if !h.isStaff(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks: map[string]Check{
			"database": dbCheck,
		},
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
		}
	}
	_ = json.NewEncoder(w).Encode(status)
}

// isStaff checks for a valid admin or editor session. Returns false
// (without panicking) when session data is not loaded into the context.
func (h *HealthHandler) isStaff(r *http.Request) (staff bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			staff = false
		}
	}()

	userID := h.sm.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if userID > 0 {
		user, err := h.queries.GetUserByID(r.Context(), userID)
		if err == nil && user.IsStaff() {
			return true
		}
	}
	return false
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase() Check {
	start := time.Now()
	err := h.db.Ping()
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}
