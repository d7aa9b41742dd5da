// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusDeleted   = "deleted"
)

// Comment statuses.
const (
	CommentStatusPending   = "pending"
	CommentStatusPublished = "published"
	CommentStatusDeleted   = "deleted"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth    = "auth"
	EventCategoryPost    = "post"
	EventCategoryComment = "comment"
	EventCategoryUser    = "user"
	EventCategorySystem  = "system"
)

// User is a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    sql.NullTime
}

// IsStaff reports whether the user may access the admin area.
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// Post is a blog entry with denormalized engagement counters.
type Post struct {
	ID             int64
	UserID         int64
	Title          string
	Slug           string
	Body           string
	Excerpt        string
	FeaturedImage  string
	Status         string
	IsFeatured     bool
	LikesCount     int64
	FavoritesCount int64
	CommentsCount  int64
	PublishedAt    sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PostWithAuthor is a post joined with its author's display name and,
// when a viewer is given, that viewer's engagement flags.
type PostWithAuthor struct {
	Post
	AuthorName     string
	ViewerHasLiked bool
	ViewerHasFaved bool
}

// Comment is a reader comment on a post. Comments start out pending and
// count toward the post only once published.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Body      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentWithDetails is a comment joined with author and post context
// for moderation listings.
type CommentWithDetails struct {
	Comment
	AuthorName string
	PostTitle  string
	PostSlug   string
}

// ContactMessage is an append-only message from the public contact form.
type ContactMessage struct {
	ID        int64
	Reference string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// Event is an audit log entry written by the logging handler and by
// security-sensitive operations.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}
