// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const commentColumns = `id, post_id, user_id, body, status, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCommentParams holds the columns for a new comment.
type CreateCommentParams struct {
	PostID    int64
	UserID    int64
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateComment inserts a comment in pending state and returns the
// stored row. Pending comments do not touch the post's comment counter.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, body, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.PostID, arg.UserID, arg.Body, CommentStatusPending, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	return q.GetCommentByID(ctx, id)
}

// GetCommentByID returns a comment by primary key, regardless of status.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (Comment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row)
}

// UpdateCommentStatus moves a comment between moderation states. The
// caller is responsible for the matching comment counter adjustment.
func (q *Queries) UpdateCommentStatus(ctx context.Context, id int64, status string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("updating comment %d status: %w", id, err)
	}
	return nil
}

// ListPublishedCommentsForPost returns published comments on a post with
// their author names, oldest first.
func (q *Queries) ListPublishedCommentsForPost(ctx context.Context, postID int64) ([]CommentWithDetails, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.user_id, c.body, c.status, c.created_at, c.updated_at,
		        u.name, p.title, p.slug
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 JOIN posts p ON p.id = c.post_id
		 WHERE c.post_id = ? AND c.status = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		postID, CommentStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	return scanCommentsWithDetails(rows)
}

// ListCommentsParams holds filtering and pagination for moderation lists.
type ListCommentsParams struct {
	Status string // empty lists every status except deleted
	Limit  int64
	Offset int64
}

// ListCommentsWithDetails returns comments with author and post context
// for the moderation queue, newest first.
func (q *Queries) ListCommentsWithDetails(ctx context.Context, arg ListCommentsParams) ([]CommentWithDetails, error) {
	query := `SELECT c.id, c.post_id, c.user_id, c.body, c.status, c.created_at, c.updated_at,
	                 u.name, p.title, p.slug
	          FROM comments c
	          JOIN users u ON u.id = c.user_id
	          JOIN posts p ON p.id = c.post_id`
	var args []any
	if arg.Status != "" {
		query += ` WHERE c.status = ?`
		args = append(args, arg.Status)
	} else {
		query += ` WHERE c.status != ?`
		args = append(args, CommentStatusDeleted)
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	return scanCommentsWithDetails(rows)
}

// CountComments returns the number of comments in the given status, or
// of all non-deleted comments when status is empty.
func (q *Queries) CountComments(ctx context.Context, status string) (int64, error) {
	var count int64
	var err error
	if status != "" {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM comments WHERE status = ?`, status).Scan(&count)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM comments WHERE status != ?`, CommentStatusDeleted).Scan(&count)
	}
	return count, err
}

// ListPostsCommentedByUser returns published posts the user has published
// comments on, most recent comment first, without duplicates.
func (q *Queries) ListPostsCommentedByUser(ctx context.Context, userID int64) ([]PostWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.status = ? AND p.id IN (
		     SELECT post_id FROM comments WHERE user_id = ? AND status = ?
		 )
		 ORDER BY (
		     SELECT MAX(created_at) FROM comments c
		     WHERE c.post_id = p.id AND c.user_id = ? AND c.status = ?
		 ) DESC`,
		PostStatusPublished, userID, CommentStatusPublished, userID, CommentStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("listing commented posts for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

func scanCommentsWithDetails(rows *sql.Rows) ([]CommentWithDetails, error) {
	var comments []CommentWithDetails
	for rows.Next() {
		var c CommentWithDetails
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Body, &c.Status,
			&c.CreatedAt, &c.UpdatedAt, &c.AuthorName, &c.PostTitle, &c.PostSlug); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
