// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
)

// CommentsPerPage is the number of comments displayed per moderation page.
const CommentsPerPage = 20

// ModerationHandler handles the admin comment moderation queue.
type ModerationHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(db *sql.DB, renderer *render.Renderer) *ModerationHandler {
	return &ModerationHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// ModerationListData holds data for the moderation queue template.
type ModerationListData struct {
	Comments      []store.CommentWithDetails
	Status        string
	TotalComments int64
	Pagination    Pagination
}

// List handles GET /admin/comments - the moderation queue, optionally
// filtered by ?status=pending|published.
func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	status := r.URL.Query().Get("status")
	if status != store.CommentStatusPending && status != store.CommentStatusPublished {
		status = ""
	}

	comments, total, err := ListAndCount(
		func() ([]store.CommentWithDetails, error) {
			return h.queries.ListCommentsWithDetails(r.Context(), store.ListCommentsParams{
				Status: status,
				Limit:  CommentsPerPage,
				Offset: int64((page - 1) * CommentsPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountComments(r.Context(), status) },
	)
	if err != nil {
		logAndInternalError(w, "failed to list comments", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/comments_list", render.TemplateData{
		Title: "Comments",
		Data: ModerationListData{
			Comments:      comments,
			Status:        status,
			TotalComments: total,
			Pagination:    Paginate(page, total, CommentsPerPage, redirectAdminComments, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render comments list", "error", err)
	}
}

// Approve handles POST /admin/comments/{id}/approve - publishes a pending
// comment and bumps the post's comment counter.
func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminComments, "Invalid comment ID")
		return
	}

	comment, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminComments, "comment", id,
		func(id int64) (store.Comment, error) { return h.queries.GetCommentByID(r.Context(), id) })
	if !ok {
		return
	}
	if comment.Status != store.CommentStatusPending {
		flashError(w, r, h.renderer, redirectAdminComments, "Only pending comments can be approved")
		return
	}

	if err := h.queries.UpdateCommentStatus(r.Context(), id, store.CommentStatusPublished, time.Now()); err != nil {
		slog.Error("failed to approve comment", "error", err, "comment_id", id)
		flashError(w, r, h.renderer, redirectAdminComments, "Error approving comment")
		return
	}
	// The counter tracks published comments only, so it moves exactly
	// once per pending-to-published transition.
	if err := h.queries.IncrementPostComments(r.Context(), comment.PostID); err != nil {
		slog.Error("failed to increment comments", "error", err, "post_id", comment.PostID)
	}

	slog.Info("comment approved", "comment_id", id, "approved_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminComments, "Comment approved")
}

// Delete handles DELETE /admin/comments/{id} - rejects or removes a
// comment. The counter is only decremented when the comment was published.
func (h *ModerationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminComments, "Invalid comment ID")
		return
	}

	comment, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminComments, "comment", id,
		func(id int64) (store.Comment, error) { return h.queries.GetCommentByID(r.Context(), id) })
	if !ok {
		return
	}
	if comment.Status == store.CommentStatusDeleted {
		flashError(w, r, h.renderer, redirectAdminComments, "Comment is already deleted")
		return
	}

	wasPublished := comment.Status == store.CommentStatusPublished
	if err := h.queries.UpdateCommentStatus(r.Context(), id, store.CommentStatusDeleted, time.Now()); err != nil {
		slog.Error("failed to delete comment", "error", err, "comment_id", id)
		flashError(w, r, h.renderer, redirectAdminComments, "Error deleting comment")
		return
	}
	if wasPublished {
		if err := h.queries.DecrementPostComments(r.Context(), comment.PostID); err != nil {
			slog.Error("failed to decrement comments", "error", err, "post_id", comment.PostID)
		}
	}

	slog.Info("comment deleted", "comment_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminComments, "Comment deleted")
}
