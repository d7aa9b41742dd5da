// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateEventParams holds the columns for a new event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, metadata, arg.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("creating event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, fmt.Errorf("creating event: %w", err)
	}

	return Event{
		ID:        id,
		Level:     arg.Level,
		Category:  arg.Category,
		Message:   arg.Message,
		UserID:    arg.UserID,
		Metadata:  metadata,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListRecentEvents returns the newest event log entries.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes event log entries older than the cutoff and
// returns the number of rows removed. Used by the retention job.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return res.RowsAffected()
}
