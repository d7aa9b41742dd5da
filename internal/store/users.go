// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const userColumns = `id, name, email, password_hash, role, is_active, last_login_at, created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return u, err
}

// CreateUserParams holds the columns for a new user.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new active user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		arg.Name, arg.Email, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns a user by primary key. Soft-deleted users are excluded.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// GetUserByEmail returns a user by email. Soft-deleted users are excluded.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email)
	return scanUser(row)
}

// ListUsersParams holds pagination for ListUsers.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns users ordered by creation time, newest first.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of non-deleted users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

// CountActiveAdmins returns the number of active, non-deleted admins.
// Used by the last-admin safeguard before demote, deactivate, or delete.
func (q *Queries) CountActiveAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ? AND is_active = 1 AND deleted_at IS NULL`,
		RoleAdmin).Scan(&count)
	return count, err
}

// UpdateUserProfileParams holds the owner-editable columns.
type UpdateUserProfileParams struct {
	Name      string
	Email     string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserProfile writes the fields a user may change on their own
// account. Role and active status are deliberately not included.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		arg.Name, arg.Email, arg.UpdatedAt, arg.ID)
	if err != nil {
		return fmt.Errorf("updating user profile %d: %w", arg.ID, err)
	}
	return nil
}

// UpdateUserAsAdminParams holds the admin-editable columns.
type UpdateUserAsAdminParams struct {
	Name      string
	Email     string
	Role      string
	IsActive  bool
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserAsAdmin writes the full set of account fields, including role
// and active status. Only reachable through admin-gated handlers.
func (q *Queries) UpdateUserAsAdmin(ctx context.Context, arg UpdateUserAsAdminParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		arg.Name, arg.Email, arg.Role, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return fmt.Errorf("updating user %d: %w", arg.ID, err)
	}
	return nil
}

// UpdateUserPasswordParams holds a new password hash for a user.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	if err != nil {
		return fmt.Errorf("updating user password %d: %w", arg.ID, err)
	}
	return nil
}

// UpdateUserLastLoginParams records a successful login time.
type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateUserLastLogin records the time of the latest successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	if err != nil {
		return fmt.Errorf("updating last login %d: %w", arg.ID, err)
	}
	return nil
}

// SoftDeleteUser marks a user deleted and inactive. The row is kept so
// that authored posts and comments stay attributable.
func (q *Queries) SoftDeleteUser(ctx context.Context, id int64, deletedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, is_active = 0, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		deletedAt, deletedAt, id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}
