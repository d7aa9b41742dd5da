// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors WARN and ERROR
// records into the events table for in-app auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/avolkau/minipress/internal/store"
)

// EventLogHandler wraps another slog.Handler and additionally persists
// records at or above a threshold level to the event log.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewEventLogHandler wraps inner so that WARN and above are also written
// to the database.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewEventLogHandlerWithLevel is like NewEventLogHandler with a custom
// persistence threshold.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.persist(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// persist writes the record as an event row. A background context is used
// so the entry survives request cancellation.
func (h *EventLogHandler) persist(r slog.Record) {
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  eventCategory(r),
		Message:   r.Message,
		UserID:    sql.NullInt64{},
		Metadata:  attrsJSON(r),
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return store.EventLevelError
	case level >= slog.LevelWarn:
		return store.EventLevelWarning
	default:
		return store.EventLevelInfo
	}
}

// eventCategory uses an explicit "category" attribute when present,
// otherwise guesses from the message text.
func eventCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "password"):
		return store.EventCategoryAuth
	case strings.Contains(msg, "post") || strings.Contains(msg, "publish"):
		return store.EventCategoryPost
	case strings.Contains(msg, "comment"):
		return store.EventCategoryComment
	case strings.Contains(msg, "user"):
		return store.EventCategoryUser
	default:
		return store.EventCategorySystem
	}
}

// attrsJSON flattens the record attributes into a JSON object. The
// "category" attribute is skipped since it is stored in its own column.
func attrsJSON(r slog.Record) string {
	attrs := make(map[string]string)

	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "category" {
			attrs[a.Key] = a.Value.String()
		}
		return true
	})

	if len(attrs) == 0 {
		return "{}"
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(b)
}
