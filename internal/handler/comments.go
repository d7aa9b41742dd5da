// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/validate"
)

// CommentMaxLength is the maximum comment body length.
const CommentMaxLength = 2000

// CommentsHandler handles reader comments on the public site.
type CommentsHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	validator *validate.Validator
}

// NewCommentsHandler creates a new CommentsHandler.
func NewCommentsHandler(db *sql.DB, renderer *render.Renderer) *CommentsHandler {
	return &CommentsHandler{
		queries:   store.New(db),
		renderer:  renderer,
		validator: validate.New(db),
	}
}

// Create handles POST /posts/{id}/comments - submits a comment for
// moderation. New comments are pending and invisible until approved.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}
	if post.Status != store.PostStatusPublished {
		http.NotFound(w, r)
		return
	}

	postURL := fmt.Sprintf(redirectPostSlug, post.Slug)
	if !parseFormOrRedirect(w, r, h.renderer, postURL) {
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"body": body,
	}, map[string]string{
		"body": fmt.Sprintf("required|max:%d", CommentMaxLength),
	})
	if validationErrors.Any() {
		flashError(w, r, h.renderer, postURL, validationErrors.First("body"))
		return
	}

	now := time.Now()
	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		PostID:    post.ID,
		UserID:    userID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create comment", "error", err, "post_id", post.ID)
		flashError(w, r, h.renderer, postURL, "Error submitting comment")
		return
	}

	slog.Info("comment submitted", "comment_id", comment.ID, "post_id", post.ID, "user_id", userID)
	flashSuccess(w, r, h.renderer, postURL, "Your comment is awaiting moderation")
}

// Delete handles DELETE /comments/{id} - removes a comment. Allowed for
// the comment's author and for staff.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	comment, ok := requireEntityWithError(w, "comment", id, func(id int64) (store.Comment, error) {
		return h.queries.GetCommentByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if comment.UserID != user.ID && !user.IsStaff() {
		slog.Warn("comment delete denied", "category", "comment", "comment_id", comment.ID, "user_id", user.ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	wasPublished := comment.Status == store.CommentStatusPublished
	if err := h.queries.UpdateCommentStatus(r.Context(), comment.ID, store.CommentStatusDeleted, time.Now()); err != nil {
		logAndInternalError(w, "failed to delete comment", "error", err, "comment_id", comment.ID)
		return
	}
	// The post's counter only ever tracked published comments.
	if wasPublished {
		if err := h.queries.DecrementPostComments(r.Context(), comment.PostID); err != nil {
			slog.Error("failed to decrement comments", "error", err, "post_id", comment.PostID)
		}
	}

	slog.Info("comment deleted", "comment_id", comment.ID, "by_user", user.ID)

	redirectTo := r.Referer()
	if redirectTo == "" {
		redirectTo = redirectHome
	}
	flashSuccess(w, r, h.renderer, redirectTo, "Comment deleted")
}
