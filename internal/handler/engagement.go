// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
)

// EngagementHandler handles like and favorite actions on posts.
type EngagementHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(db *sql.DB, renderer *render.Renderer) *EngagementHandler {
	return &EngagementHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Like handles POST /posts/{id}/like.
func (h *EngagementHandler) Like(w http.ResponseWriter, r *http.Request) {
	post, arg, ok := h.requireEngageable(w, r)
	if !ok {
		return
	}

	// Repeated likes are a no-op, never a double count.
	liked, err := h.queries.HasLiked(r.Context(), arg)
	if err != nil {
		logAndInternalError(w, "failed to check like", "error", err, "post_id", arg.PostID)
		return
	}
	if !liked {
		if err := h.queries.AddLike(r.Context(), arg, time.Now()); err != nil {
			logAndInternalError(w, "failed to add like", "error", err, "post_id", arg.PostID)
			return
		}
		if err := h.queries.IncrementPostLikes(r.Context(), arg.PostID); err != nil {
			slog.Error("failed to increment likes", "error", err, "post_id", arg.PostID)
		}
	}

	http.Redirect(w, r, fmt.Sprintf(redirectPostSlug, post.Slug), http.StatusSeeOther)
}

// Unlike handles POST /posts/{id}/unlike.
func (h *EngagementHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	post, arg, ok := h.requireEngageable(w, r)
	if !ok {
		return
	}

	removed, err := h.queries.RemoveLike(r.Context(), arg)
	if err != nil {
		logAndInternalError(w, "failed to remove like", "error", err, "post_id", arg.PostID)
		return
	}
	// Only decrement when a row actually went away.
	if removed > 0 {
		if err := h.queries.DecrementPostLikes(r.Context(), arg.PostID); err != nil {
			slog.Error("failed to decrement likes", "error", err, "post_id", arg.PostID)
		}
	}

	http.Redirect(w, r, fmt.Sprintf(redirectPostSlug, post.Slug), http.StatusSeeOther)
}

// Favorite handles POST /posts/{id}/favorite.
func (h *EngagementHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	post, arg, ok := h.requireEngageable(w, r)
	if !ok {
		return
	}

	faved, err := h.queries.HasFavorited(r.Context(), arg)
	if err != nil {
		logAndInternalError(w, "failed to check favorite", "error", err, "post_id", arg.PostID)
		return
	}
	if !faved {
		if err := h.queries.AddFavorite(r.Context(), arg, time.Now()); err != nil {
			logAndInternalError(w, "failed to add favorite", "error", err, "post_id", arg.PostID)
			return
		}
		if err := h.queries.IncrementPostFavorites(r.Context(), arg.PostID); err != nil {
			slog.Error("failed to increment favorites", "error", err, "post_id", arg.PostID)
		}
	}

	http.Redirect(w, r, fmt.Sprintf(redirectPostSlug, post.Slug), http.StatusSeeOther)
}

// Unfavorite handles POST /posts/{id}/unfavorite.
func (h *EngagementHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	post, arg, ok := h.requireEngageable(w, r)
	if !ok {
		return
	}

	removed, err := h.queries.RemoveFavorite(r.Context(), arg)
	if err != nil {
		logAndInternalError(w, "failed to remove favorite", "error", err, "post_id", arg.PostID)
		return
	}
	if removed > 0 {
		if err := h.queries.DecrementPostFavorites(r.Context(), arg.PostID); err != nil {
			slog.Error("failed to decrement favorites", "error", err, "post_id", arg.PostID)
		}
	}

	http.Redirect(w, r, fmt.Sprintf(redirectPostSlug, post.Slug), http.StatusSeeOther)
}

// requireEngageable resolves the post from the URL and checks that it is
// published and that a user is logged in. Engagement on drafts or deleted
// posts is rejected with 404 so their existence stays hidden.
func (h *EngagementHandler) requireEngageable(w http.ResponseWriter, r *http.Request) (store.Post, store.EngagementParams, bool) {
	var zero store.Post

	userID := middleware.GetUserID(r)
	if userID == 0 {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return zero, store.EngagementParams{}, false
	}

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return zero, store.EngagementParams{}, false
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return zero, store.EngagementParams{}, false
	}
	if post.Status != store.PostStatusPublished {
		http.NotFound(w, r)
		return zero, store.EngagementParams{}, false
	}

	return post, store.EngagementParams{PostID: post.ID, UserID: userID}, true
}
