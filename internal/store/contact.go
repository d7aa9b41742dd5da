// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"
)

// CreateContactMessageParams holds the columns for a new contact message.
// Reference is a caller-supplied public identifier handed back to the
// sender so support staff can locate the message later.
type CreateContactMessageParams struct {
	Reference string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage appends a contact message. The table is
// append-only: there are no update or delete operations on it.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (reference, name, email, subject, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Reference, arg.Name, arg.Email, arg.Subject, arg.Message, arg.CreatedAt)
	if err != nil {
		return ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}

	row := q.db.QueryRowContext(ctx,
		`SELECT id, reference, name, email, subject, message, created_at
		 FROM contact_messages WHERE id = ?`, id)
	var m ContactMessage
	err = row.Scan(&m.ID, &m.Reference, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt)
	return m, err
}

// ListContactMessagesParams holds pagination for the admin inbox.
type ListContactMessagesParams struct {
	Limit  int64
	Offset int64
}

// ListContactMessages returns contact messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context, arg ListContactMessagesParams) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, reference, name, email, subject, message, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var messages []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Reference, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountContactMessages returns the total number of contact messages.
func (q *Queries) CountContactMessages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&count)
	return count, err
}
