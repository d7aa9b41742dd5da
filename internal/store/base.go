// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNoFillable is returned by Table.Create when none of the supplied
// columns survive the fillable whitelist.
var ErrNoFillable = errors.New("store: no fillable data")

// ErrColumnNotAllowed is returned by FirstBy/ExistsBy when the requested
// column is not part of the table's fillable set or primary key.
var ErrColumnNotAllowed = errors.New("store: column not allowed")

// DBTX is the subset of *sql.DB and *sql.Tx used by Table operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Record is a single table row keyed by column name.
type Record map[string]any

// Int64 returns the named column as int64, or 0 when absent or of
// another type.
func (r Record) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// String returns the named column as a string, or "" when absent.
func (r Record) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Time returns the named column as a time.Time, or the zero value.
func (r Record) Time(column string) time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

// Bool returns the named column as a bool. SQLite stores booleans as
// integers, so any nonzero integer reads as true.
func (r Record) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Table describes a database table for the generic CRUD operations.
// Only columns listed in Fillable can be written through Create and
// Update, which is the mass-assignment guard for form-driven writes.
type Table struct {
	Name       string
	PrimaryKey string
	Fillable   []string
}

// pk returns the primary key column, defaulting to "id".
func (t Table) pk() string {
	if t.PrimaryKey == "" {
		return "id"
	}
	return t.PrimaryKey
}

// allowed reports whether a column may be used in bespoke lookups.
func (t Table) allowed(column string) bool {
	if column == t.pk() {
		return true
	}
	for _, c := range t.Fillable {
		if c == column {
			return true
		}
	}
	return false
}

// filterFillable keeps only whitelisted columns, in deterministic order.
func (t Table) filterFillable(data Record) ([]string, []any) {
	var cols []string
	for _, c := range t.Fillable {
		if _, ok := data[c]; ok {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	vals := make([]any, 0, len(cols))
	for _, c := range cols {
		vals = append(vals, data[c])
	}
	return cols, vals
}

// Find returns the row with the given primary key, or nil when no row
// matches.
func (t Table) Find(ctx context.Context, db DBTX, id int64) (Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", t.Name, t.pk())
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("finding %s %d: %w", t.Name, id, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning %s %d: %w", t.Name, id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// All returns rows ordered by orderBy, or by primary key descending when
// orderBy is empty. orderBy is interpolated into the statement and must
// come from trusted code, never from request input. A limit of 0 means
// no limit.
func (t Table) All(ctx context.Context, db DBTX, limit, offset int64, orderBy string) ([]Record, error) {
	if orderBy == "" {
		orderBy = t.pk() + " DESC"
	}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", t.Name, orderBy)
	var args []any
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.Name, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.Name, err)
	}
	return records, nil
}

// Create inserts a new row from the fillable subset of data and returns
// the new primary key. Returns ErrNoFillable when nothing survives the
// whitelist.
func (t Table) Create(ctx context.Context, db DBTX, data Record) (int64, error) {
	cols, vals := t.filterFillable(data)
	if len(cols) == 0 {
		return 0, ErrNoFillable
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(cols, ", "), placeholders)

	res, err := db.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", t.Name, err)
	}
	return id, nil
}

// Update writes the fillable subset of data to the row with the given
// primary key. Returns false without touching the database when nothing
// is fillable. Returns true whenever the statement executes, regardless
// of whether a row matched; callers that need to distinguish a missing
// row should Find it first.
func (t Table) Update(ctx context.Context, db DBTX, id int64, data Record) (bool, error) {
	cols, vals := t.filterFillable(data)
	if len(cols) == 0 {
		return false, nil
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		t.Name, strings.Join(sets, ", "), t.pk())
	vals = append(vals, id)

	if _, err := db.ExecContext(ctx, query, vals...); err != nil {
		return false, fmt.Errorf("updating %s %d: %w", t.Name, id, err)
	}
	return true, nil
}

// Delete removes the row with the given primary key. Like Update, it
// returns true whenever the statement executes, even when no row matched.
func (t Table) Delete(ctx context.Context, db DBTX, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Name, t.pk())
	if _, err := db.ExecContext(ctx, query, id); err != nil {
		return false, fmt.Errorf("deleting %s %d: %w", t.Name, id, err)
	}
	return true, nil
}

// FirstBy returns the first row where column equals value, ordered by
// primary key, or nil when no row matches. The column must be fillable
// or the primary key.
func (t Table) FirstBy(ctx context.Context, db DBTX, column string, value any) (Record, error) {
	if !t.allowed(column) {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotAllowed, t.Name, column)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? ORDER BY %s LIMIT 1",
		t.Name, column, t.pk())
	rows, err := db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("querying %s by %s: %w", t.Name, column, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning %s by %s: %w", t.Name, column, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// ExistsBy reports whether a row exists where column equals value,
// optionally ignoring one primary key (for uniqueness checks on update).
func (t Table) ExistsBy(ctx context.Context, db DBTX, column string, value any, exceptID ...int64) (bool, error) {
	if !t.allowed(column) {
		return false, fmt.Errorf("%w: %s.%s", ErrColumnNotAllowed, t.Name, column)
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", t.Name, column)
	args := []any{value}
	if len(exceptID) > 0 && exceptID[0] > 0 {
		query += fmt.Sprintf(" AND %s != ?", t.pk())
		args = append(args, exceptID[0])
	}

	var count int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking %s.%s exists: %w", t.Name, column, err)
	}
	return count > 0, nil
}

// scanRecords reads all rows into generic records.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = values[i]
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
