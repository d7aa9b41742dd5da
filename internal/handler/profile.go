// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avolkau/minipress/internal/auth"
	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/validate"
)

// ProfileHandler handles the logged-in user's own account pages.
type ProfileHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	validator *validate.Validator
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB, renderer *render.Renderer) *ProfileHandler {
	return &ProfileHandler{
		queries:   store.New(db),
		renderer:  renderer,
		validator: validate.New(db),
	}
}

// ProfileData holds data for the profile template.
type ProfileData struct {
	User           *store.User
	LikedPosts     []store.PostWithAuthor
	FavoritePosts  []store.PostWithAuthor
	CommentedPosts []store.PostWithAuthor
	Errors         validate.Errors
	FormValues     map[string]string
}

// Show handles GET /profile - the account page with the user's liked,
// favorited and commented posts.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	liked, err := h.queries.ListPostsLikedByUser(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to list liked posts", "error", err, "user_id", user.ID)
		return
	}
	favorites, err := h.queries.ListPostsFavoritedByUser(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to list favorite posts", "error", err, "user_id", user.ID)
		return
	}
	commented, err := h.queries.ListPostsCommentedByUser(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "failed to list commented posts", "error", err, "user_id", user.ID)
		return
	}

	if err := h.renderer.Render(w, r, "auth/profile", render.TemplateData{
		Title: "Profile",
		Data: ProfileData{
			User:           user,
			LikedPosts:     liked,
			FavoritePosts:  favorites,
			CommentedPosts: commented,
			Errors:         validate.Errors{},
			FormValues:     map[string]string{"name": user.Name, "email": user.Email},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render profile", "error", err)
	}
}

// Update handles POST /profile - updates the user's name and email.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectProfile) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))

	emailRule := "required|email|max:254"
	if email != user.Email {
		emailRule += "|unique:users,email"
	}
	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"name":  name,
		"email": email,
	}, map[string]string{
		"name":  "required|min:2|max:100",
		"email": emailRule,
	})
	if validationErrors.Any() {
		flashError(w, r, h.renderer, redirectProfile, validationErrors.Flatten()[0])
		return
	}

	if err := h.queries.UpdateUserProfile(r.Context(), store.UpdateUserProfileParams{
		Name:      name,
		Email:     email,
		UpdatedAt: time.Now(),
		ID:        user.ID,
	}); err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectProfile, "Error updating profile")
		return
	}

	slog.Info("profile updated", "user_id", user.ID)
	flashSuccess(w, r, h.renderer, redirectProfile, "Profile updated")
}

// ChangePassword handles POST /profile/password - changes the password
// after verifying the current one.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectProfile) {
		return
	}

	current := r.FormValue("current_password")
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")

	valid, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil || !valid {
		slog.Warn("password change with wrong current password", "category", "auth", "user_id", user.ID)
		flashError(w, r, h.renderer, redirectProfile, "Current password is incorrect")
		return
	}

	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"password":         password,
		"password_confirm": passwordConfirm,
	}, map[string]string{
		"password":         "required|min:8|max:128",
		"password_confirm": "required|same:password",
	})
	if validationErrors.Any() {
		flashError(w, r, h.renderer, redirectProfile, validationErrors.Flatten()[0])
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectProfile, "Error changing password")
		return
	}

	if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	}); err != nil {
		slog.Error("failed to update password", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectProfile, "Error changing password")
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	flashSuccess(w, r, h.renderer, redirectProfile, "Password changed")
}
