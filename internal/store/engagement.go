// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"
)

// Likes and favorites share one shape: a hard-deleted join row plus a
// denormalized counter on the post. The row insert/delete and the counter
// update are separate statements, so a crash between them can skew a
// counter by one. Decrements clamp at zero to keep that skew from ever
// going negative.

// EngagementParams identifies a (post, user) engagement pair.
type EngagementParams struct {
	PostID int64
	UserID int64
}

// HasLiked reports whether the user has an existing like row for the post.
func (q *Queries) HasLiked(ctx context.Context, arg EngagementParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?)`,
		arg.PostID, arg.UserID).Scan(&exists)
	return exists, err
}

// AddLike inserts a like row. The UNIQUE(post_id, user_id) index rejects
// duplicates at the schema level as a second line of defense.
func (q *Queries) AddLike(ctx context.Context, arg EngagementParams, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		arg.PostID, arg.UserID, createdAt)
	if err != nil {
		return fmt.Errorf("adding like: %w", err)
	}
	return nil
}

// RemoveLike deletes the like row and returns the number of rows removed.
// Callers only decrement the counter when a row was actually deleted.
func (q *Queries) RemoveLike(ctx context.Context, arg EngagementParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`,
		arg.PostID, arg.UserID)
	if err != nil {
		return 0, fmt.Errorf("removing like: %w", err)
	}
	return res.RowsAffected()
}

// HasFavorited reports whether the user has favorited the post.
func (q *Queries) HasFavorited(ctx context.Context, arg EngagementParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_favorites WHERE post_id = ? AND user_id = ?)`,
		arg.PostID, arg.UserID).Scan(&exists)
	return exists, err
}

// AddFavorite inserts a favorite row.
func (q *Queries) AddFavorite(ctx context.Context, arg EngagementParams, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO post_favorites (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		arg.PostID, arg.UserID, createdAt)
	if err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes the favorite row and returns the rows removed.
func (q *Queries) RemoveFavorite(ctx context.Context, arg EngagementParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM post_favorites WHERE post_id = ? AND user_id = ?`,
		arg.PostID, arg.UserID)
	if err != nil {
		return 0, fmt.Errorf("removing favorite: %w", err)
	}
	return res.RowsAffected()
}

// IncrementPostLikes adds one to the post's like counter.
func (q *Queries) IncrementPostLikes(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "likes_count", postID, +1)
}

// DecrementPostLikes subtracts one from the post's like counter,
// clamping at zero.
func (q *Queries) DecrementPostLikes(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "likes_count", postID, -1)
}

// IncrementPostFavorites adds one to the post's favorite counter.
func (q *Queries) IncrementPostFavorites(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "favorites_count", postID, +1)
}

// DecrementPostFavorites subtracts one from the favorite counter,
// clamping at zero.
func (q *Queries) DecrementPostFavorites(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "favorites_count", postID, -1)
}

// IncrementPostComments adds one to the post's comment counter. Called
// only on the pending-to-published transition.
func (q *Queries) IncrementPostComments(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "comments_count", postID, +1)
}

// DecrementPostComments subtracts one from the comment counter, clamping
// at zero. Called only when a published comment is deleted.
func (q *Queries) DecrementPostComments(ctx context.Context, postID int64) error {
	return q.bumpCounter(ctx, "comments_count", postID, -1)
}

// bumpCounter adjusts one of the fixed counter columns. The column name
// is always a compile-time constant from the callers above.
func (q *Queries) bumpCounter(ctx context.Context, column string, postID int64, delta int64) error {
	var query string
	if delta >= 0 {
		query = fmt.Sprintf(`UPDATE posts SET %s = %s + ? WHERE id = ?`, column, column)
	} else {
		// SQLite scalar MAX keeps the counter from going negative.
		query = fmt.Sprintf(`UPDATE posts SET %s = MAX(%s - ?, 0) WHERE id = ?`, column, column)
		delta = -delta
	}
	if _, err := q.db.ExecContext(ctx, query, delta, postID); err != nil {
		return fmt.Errorf("adjusting %s for post %d: %w", column, postID, err)
	}
	return nil
}

// ListPostsLikedByUser returns published posts the user has liked,
// most recently liked first.
func (q *Queries) ListPostsLikedByUser(ctx context.Context, userID int64) ([]PostWithAuthor, error) {
	return q.listEngagedPosts(ctx, "post_likes", userID)
}

// ListPostsFavoritedByUser returns published posts the user has
// favorited, most recently favorited first.
func (q *Queries) ListPostsFavoritedByUser(ctx context.Context, userID int64) ([]PostWithAuthor, error) {
	return q.listEngagedPosts(ctx, "post_favorites", userID)
}

func (q *Queries) listEngagedPosts(ctx context.Context, table string, userID int64) ([]PostWithAuthor, error) {
	query := fmt.Sprintf(
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at, u.name
		 FROM %s e
		 JOIN posts p ON p.id = e.post_id
		 JOIN users u ON u.id = p.user_id
		 WHERE e.user_id = ? AND p.status = ?
		 ORDER BY e.created_at DESC, e.id DESC`, table)

	rows, err := q.db.QueryContext(ctx, query, userID, PostStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("listing %s for user %d: %w", table, userID, err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}
