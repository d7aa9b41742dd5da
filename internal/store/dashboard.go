// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DashboardStats holds the aggregate figures shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers        int64
	TotalPosts        int64
	PublishedPosts    int64
	DraftPosts        int64
	PendingComments   int64
	PublishedComments int64
	ContactMessages   int64
	TotalLikes        int64
	TotalFavorites    int64

	// Averages over published posts. Zero when nothing is published.
	AvgLikesPerPost    float64
	AvgCommentsPerPost float64

	// TotalInteractions is likes + favorites + published comments.
	TotalInteractions int64

	// Most engaged commenter (by published comments). Empty when there
	// are no published comments.
	MostActiveUserName     string
	MostActiveUserComments int64
}

// GetDashboardStats computes the dashboard aggregates. Each figure is a
// separate query; the dashboard is admin-only and not on a hot path.
func (q *Queries) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	var err error

	if s.TotalUsers, err = q.CountUsers(ctx); err != nil {
		return s, fmt.Errorf("dashboard users: %w", err)
	}
	if s.TotalPosts, err = q.CountPosts(ctx); err != nil {
		return s, fmt.Errorf("dashboard posts: %w", err)
	}
	if s.PublishedPosts, err = q.CountPostsByStatus(ctx, PostStatusPublished); err != nil {
		return s, fmt.Errorf("dashboard published posts: %w", err)
	}
	if s.DraftPosts, err = q.CountPostsByStatus(ctx, PostStatusDraft); err != nil {
		return s, fmt.Errorf("dashboard draft posts: %w", err)
	}
	if s.PendingComments, err = q.CountComments(ctx, CommentStatusPending); err != nil {
		return s, fmt.Errorf("dashboard pending comments: %w", err)
	}
	if s.PublishedComments, err = q.CountComments(ctx, CommentStatusPublished); err != nil {
		return s, fmt.Errorf("dashboard published comments: %w", err)
	}
	if s.ContactMessages, err = q.CountContactMessages(ctx); err != nil {
		return s, fmt.Errorf("dashboard contact messages: %w", err)
	}

	err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes`).Scan(&s.TotalLikes)
	if err != nil {
		return s, fmt.Errorf("dashboard likes: %w", err)
	}
	err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_favorites`).Scan(&s.TotalFavorites)
	if err != nil {
		return s, fmt.Errorf("dashboard favorites: %w", err)
	}

	err = q.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(likes_count), 0), COALESCE(AVG(comments_count), 0)
		 FROM posts WHERE status = ?`, PostStatusPublished).
		Scan(&s.AvgLikesPerPost, &s.AvgCommentsPerPost)
	if err != nil {
		return s, fmt.Errorf("dashboard averages: %w", err)
	}

	s.TotalInteractions = s.TotalLikes + s.TotalFavorites + s.PublishedComments

	// Most active commenter; no row when there are no published comments.
	row := q.db.QueryRowContext(ctx,
		`SELECT u.name, COUNT(*) AS c
		 FROM comments cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.status = ?
		 GROUP BY cm.user_id
		 ORDER BY c DESC, u.id ASC
		 LIMIT 1`, CommentStatusPublished)
	if err := row.Scan(&s.MostActiveUserName, &s.MostActiveUserComments); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return s, fmt.Errorf("dashboard most active user: %w", err)
		}
	}

	return s, nil
}
