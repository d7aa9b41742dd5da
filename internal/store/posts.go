// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const postColumns = `id, user_id, title, slug, body, excerpt, featured_image, status, is_featured,
	likes_count, favorites_count, comments_count, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.FeaturedImage,
		&p.Status, &p.IsFeatured,
		&p.LikesCount, &p.FavoritesCount, &p.CommentsCount, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePostParams holds the columns for a new post.
type CreatePostParams struct {
	UserID        int64
	Title         string
	Slug          string
	Body          string
	Excerpt       string
	FeaturedImage string
	Status        string
	IsFeatured    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreatePost inserts a new post and returns the stored row. A post
// created directly in published state gets its published_at stamped.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	var publishedAt sql.NullTime
	if arg.Status == PostStatusPublished {
		publishedAt = sql.NullTime{Time: arg.CreatedAt, Valid: true}
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, title, slug, body, excerpt, featured_image,
		                    status, is_featured, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.UserID, arg.Title, arg.Slug, arg.Body, arg.Excerpt, arg.FeaturedImage,
		arg.Status, arg.IsFeatured, publishedAt, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Post{}, fmt.Errorf("creating post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, fmt.Errorf("creating post: %w", err)
	}
	return q.GetPostByID(ctx, id)
}

// GetPostByID returns a post by primary key, regardless of status.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns a post by slug, regardless of status.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// GetPublishedPostParams identifies a published post and an optional viewer.
type GetPublishedPostParams struct {
	Slug     string
	ViewerID int64 // 0 for anonymous viewers
}

// GetPublishedPost returns a published post with its author name and the
// viewer's like/favorite flags. Returns sql.ErrNoRows for drafts and
// deleted posts, so unpublished content stays invisible on the public site.
func (q *Queries) GetPublishedPost(ctx context.Context, arg GetPublishedPostParams) (PostWithAuthor, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at,
		        u.name,
		        EXISTS (SELECT 1 FROM post_likes     WHERE post_id = p.id AND user_id = ?),
		        EXISTS (SELECT 1 FROM post_favorites WHERE post_id = p.id AND user_id = ?)
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.slug = ? AND p.status = ?`,
		arg.ViewerID, arg.ViewerID, arg.Slug, PostStatusPublished)

	var p PostWithAuthor
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.FeaturedImage,
		&p.Status, &p.IsFeatured,
		&p.LikesCount, &p.FavoritesCount, &p.CommentsCount,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.ViewerHasLiked, &p.ViewerHasFaved)
	return p, err
}

// ListPublishedPostsParams holds pagination for the public post list.
type ListPublishedPostsParams struct {
	Limit  int64
	Offset int64
}

// ListPublishedPosts returns published posts with author names, newest
// publication first.
func (q *Queries) ListPublishedPosts(ctx context.Context, arg ListPublishedPostsParams) ([]PostWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.status = ?
		 ORDER BY p.published_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		PostStatusPublished, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

// ListFeaturedPosts returns the most recent featured published posts.
func (q *Queries) ListFeaturedPosts(ctx context.Context, limit int64) ([]PostWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.status = ? AND p.is_featured = 1
		 ORDER BY p.published_at DESC, p.id DESC
		 LIMIT ?`,
		PostStatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

func scanPostsWithAuthor(rows *sql.Rows) ([]PostWithAuthor, error) {
	var posts []PostWithAuthor
	for rows.Next() {
		var p PostWithAuthor
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.FeaturedImage,
			&p.Status, &p.IsFeatured,
			&p.LikesCount, &p.FavoritesCount, &p.CommentsCount,
			&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPublishedPosts returns the number of published posts.
func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status = ?`, PostStatusPublished).Scan(&count)
	return count, err
}

// ListPostsParams holds pagination for the admin post list.
type ListPostsParams struct {
	Limit  int64
	Offset int64
}

// ListPosts returns all non-deleted posts with author names for the
// admin area, newest first.
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]PostWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.slug, p.body, p.excerpt, p.featured_image,
		        p.status, p.is_featured,
		        p.likes_count, p.favorites_count, p.comments_count,
		        p.published_at, p.created_at, p.updated_at, u.name
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.status != ?
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		PostStatusDeleted, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

// CountPosts returns the number of non-deleted posts.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status != ?`, PostStatusDeleted).Scan(&count)
	return count, err
}

// CountPostsByStatus returns the number of posts in the given status.
func (q *Queries) CountPostsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status = ?`, status).Scan(&count)
	return count, err
}

// UpdatePostParams holds the editable post columns.
type UpdatePostParams struct {
	Title         string
	Slug          string
	Body          string
	Excerpt       string
	FeaturedImage string
	IsFeatured    bool
	UpdatedAt     time.Time
	ID            int64
}

// UpdatePost writes the content fields of a post. Status transitions go
// through PublishPost, UnpublishPost, and SoftDeletePost instead.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, body = ?, excerpt = ?, featured_image = ?,
		                  is_featured = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Slug, arg.Body, arg.Excerpt, arg.FeaturedImage,
		arg.IsFeatured, arg.UpdatedAt, arg.ID)
	if err != nil {
		return fmt.Errorf("updating post %d: %w", arg.ID, err)
	}
	return nil
}

// PublishPost moves a post to published and stamps published_at.
func (q *Queries) PublishPost(ctx context.Context, id int64, publishedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		PostStatusPublished, publishedAt, publishedAt, id)
	if err != nil {
		return fmt.Errorf("publishing post %d: %w", id, err)
	}
	return nil
}

// UnpublishPost moves a post back to draft and clears published_at.
func (q *Queries) UnpublishPost(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, published_at = NULL, updated_at = ? WHERE id = ?`,
		PostStatusDraft, updatedAt, id)
	if err != nil {
		return fmt.Errorf("unpublishing post %d: %w", id, err)
	}
	return nil
}

// SoftDeletePost marks a post deleted. The row and its engagement data
// are kept; deleted posts simply stop appearing anywhere.
func (q *Queries) SoftDeletePost(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, updated_at = ? WHERE id = ?`,
		PostStatusDeleted, updatedAt, id)
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	return nil
}
