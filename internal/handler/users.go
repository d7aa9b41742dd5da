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

// ValidRoles contains all assignable user roles.
var ValidRoles = []string{store.RoleAdmin, store.RoleEditor, store.RoleUser}

// UsersPerPage is the number of users displayed per admin page.
const UsersPerPage = 20

// UsersHandler handles admin user management routes.
type UsersHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	validator *validate.Validator
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(db *sql.DB, renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{
		queries:   store.New(db),
		renderer:  renderer,
		validator: validate.New(db),
	}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users         []store.User
	CurrentUserID int64
	TotalUsers    int64
	Pagination    Pagination
}

// List handles GET /admin/users - a paginated list of users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	users, total, err := ListAndCount(
		func() ([]store.User, error) {
			return h.queries.ListUsers(r.Context(), store.ListUsersParams{
				Limit:  UsersPerPage,
				Offset: int64((page - 1) * UsersPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountUsers(r.Context()) },
	)
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/users_list", render.TemplateData{
		Title: "Users",
		Data: UsersListData{
			Users:         users,
			CurrentUserID: middleware.GetUserID(r),
			TotalUsers:    total,
			Pagination:    Paginate(page, total, UsersPerPage, redirectAdminUsers, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render users list", "error", err)
	}
}

// UserFormData holds data for the user edit form template.
type UserFormData struct {
	User       store.User
	Roles      []string
	Errors     validate.Errors
	FormValues map[string]string
}

// EditForm handles GET /admin/users/{id} - displays the edit user form.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	editUser, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/users_form", render.TemplateData{
		Title: "Edit User",
		Data: UserFormData{
			User:   editUser,
			Roles:  ValidRoles,
			Errors: validate.Errors{},
			FormValues: map[string]string{
				"name":  editUser.Name,
				"email": editUser.Email,
				"role":  editUser.Role,
			},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render user form", "error", err)
	}
}

// Update handles PUT /admin/users/{id} - updates name, email, role and
// active status. Demoting or deactivating the last active admin is refused.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	editUser, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	formURL := fmt.Sprintf(redirectAdminUsersID, id)
	if !parseFormOrRedirect(w, r, h.renderer, formURL) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	role := r.FormValue("role")
	isActive := r.FormValue("is_active") == "1"

	emailRule := "required|email|max:254"
	if email != editUser.Email {
		emailRule += "|unique:users,email"
	}
	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"name":  name,
		"email": email,
		"role":  role,
	}, map[string]string{
		"name":  "required|min:2|max:100",
		"email": emailRule,
		"role":  "required|in:" + strings.Join(ValidRoles, ","),
	})

	// Losing the last admin would lock everyone out of the admin area.
	demoted := editUser.Role == store.RoleAdmin && (role != store.RoleAdmin || !isActive)
	if !validationErrors.Any() && editUser.IsActive && demoted {
		admins, err := h.queries.CountActiveAdmins(r.Context())
		if err != nil {
			slog.Error("failed to count admins", "error", err)
			flashError(w, r, h.renderer, formURL, "Error updating user")
			return
		}
		if admins <= 1 {
			validationErrors = validate.Errors{"role": {"Cannot demote or deactivate the last admin."}}
		}
	}

	if validationErrors.Any() {
		if err := h.renderer.Render(w, r, "admin/users_form", render.TemplateData{
			Title: "Edit User",
			Data: UserFormData{
				User:   editUser,
				Roles:  ValidRoles,
				Errors: validationErrors,
				FormValues: map[string]string{
					"name":  name,
					"email": email,
					"role":  role,
				},
			},
		}); err != nil {
			logAndInternalError(w, "failed to render user form", "error", err)
		}
		return
	}

	if err := h.queries.UpdateUserAsAdmin(r.Context(), store.UpdateUserAsAdminParams{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		UpdatedAt: time.Now(),
		ID:        id,
	}); err != nil {
		slog.Error("failed to update user", "error", err, "user_id", id)
		flashError(w, r, h.renderer, formURL, "Error updating user")
		return
	}

	slog.Info("user updated", "user_id", id, "updated_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User updated")
}

// Delete handles DELETE /admin/users/{id} - soft deletes a user. Admins
// cannot delete themselves, and the last active admin is protected.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	if id == middleware.GetUserID(r) {
		flashError(w, r, h.renderer, redirectAdminUsers, "You cannot delete your own account")
		return
	}

	editUser, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if editUser.Role == store.RoleAdmin && editUser.IsActive {
		admins, err := h.queries.CountActiveAdmins(r.Context())
		if err != nil {
			slog.Error("failed to count admins", "error", err)
			flashError(w, r, h.renderer, redirectAdminUsers, "Error deleting user")
			return
		}
		if admins <= 1 {
			flashError(w, r, h.renderer, redirectAdminUsers, "Cannot delete the last admin")
			return
		}
	}

	if err := h.queries.SoftDeleteUser(r.Context(), id, time.Now()); err != nil {
		slog.Error("failed to delete user", "error", err, "user_id", id)
		flashError(w, r, h.renderer, redirectAdminUsers, "Error deleting user")
		return
	}

	slog.Warn("user deleted", "category", "user", "user_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User deleted")
}
