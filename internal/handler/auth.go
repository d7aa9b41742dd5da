// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/avolkau/minipress/internal/auth"
	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/validate"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	validator       *validate.Validator
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		validator:       validate.New(db),
		loginProtection: lp,
	}
}

// AuthFormData holds data for the login and registration templates.
type AuthFormData struct {
	Errors     validate.Errors
	FormValues map[string]string
}

// RegisterForm handles GET /register - displays the registration form.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}
	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title: "Register",
		Data: AuthFormData{
			Errors:     validate.Errors{},
			FormValues: map[string]string{},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render registration form", "error", err)
	}
}

// Register handles POST /register - creates a new reader account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")

	formValues := map[string]string{"name": name, "email": email}

	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"name":             name,
		"email":            email,
		"password":         password,
		"password_confirm": passwordConfirm,
	}, map[string]string{
		"name":             "required|min:2|max:100",
		"email":            "required|email|max:254|unique:users,email",
		"password":         "required|min:8|max:128",
		"password_confirm": "required|same:password",
	})

	if validationErrors.Any() {
		if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
			Title: "Register",
			Data: AuthFormData{
				Errors:     validationErrors,
				FormValues: formValues,
			},
		}); err != nil {
			logAndInternalError(w, "failed to render registration form", "error", err)
		}
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		flashError(w, r, h.renderer, redirectRegister, "Error creating account")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         store.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		flashError(w, r, h.renderer, redirectRegister, "Error creating account")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	h.logAuthEvent(r, "User registered", user.ID)

	// Log the new user straight in
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	flashSuccess(w, r, h.renderer, redirectHome, fmt.Sprintf("Welcome, %s!", user.Name))
}

// LoginForm handles GET /login - displays the login form.
// Already-authenticated users are redirected away.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}
	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Login",
		Data: AuthFormData{
			Errors:     validate.Errors{},
			FormValues: map[string]string{},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render login form", "error", err)
	}
}

// Login handles POST /login - authenticates a user and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			slog.Warn("login attempt on locked account", "category", "auth", "email", email)
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("login failed: user not found", "category", "auth", "email", email)
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record the attempt for unknown accounts too, so probing an
		// email address behaves the same whether or not it exists.
		h.recordFailureAndRespond(w, r, email)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}
	if !valid {
		slog.Warn("login failed: invalid password", "category", "auth", "user_id", user.ID)
		h.recordFailureAndRespond(w, r, email)
		return
	}

	if !user.IsActive {
		slog.Warn("login attempt on deactivated account", "category", "auth", "user_id", user.ID)
		flashError(w, r, h.renderer, redirectLogin, "This account has been deactivated")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash password if it uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          user.ID,
	}); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	h.logAuthEvent(r, "User logged in", user.ID)

	h.renderer.SetFlash(r, fmt.Sprintf("Welcome back, %s!", user.Name), "success")
	if user.IsStaff() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// Logout handles POST /logout - destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	if userID > 0 {
		slog.Info("user logged out", "user_id", userID)
		h.logAuthEvent(r, "User logged out", userID)
	}

	flashAndRedirect(w, r, h.renderer, redirectHome, "You have been logged out", "info")
}

// recordFailureAndRespond records a failed login attempt and flashes the
// appropriate message: lockout, remaining-attempts warning, or the generic
// invalid-credentials response.
func (h *AuthHandler) recordFailureAndRespond(w http.ResponseWriter, r *http.Request, email string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			slog.Warn("account locked after failed logins", "category", "auth", "email", email,
				"duration", lockDuration.String())
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
			return
		}
		if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
			return
		}
	}
	flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
}

// logAuthEvent writes an auth event with client metadata to the event log.
func (h *AuthHandler) logAuthEvent(r *http.Request, message string, userID int64) {
	ua := useragent.Parse(r.UserAgent())
	metadata := fmt.Sprintf(`{"browser":%q,"os":%q,"mobile":%t}`, ua.Name, ua.OS, ua.Mobile)

	// The request context dies with the response; give the write its own.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     store.EventLevelInfo,
		Category:  store.EventCategoryAuth,
		Message:   message,
		UserID:    sql.NullInt64{Int64: userID, Valid: userID > 0},
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}); err != nil {
		slog.Error("failed to log auth event", "error", err)
	}
}

// redirectIfLoggedIn redirects authenticated users away from the auth forms.
// Returns true when a redirect was written.
func (h *AuthHandler) redirectIfLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if userID <= 0 {
		return false
	}
	user, err := h.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		return false
	}
	if user.IsStaff() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
	}
	return true
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
