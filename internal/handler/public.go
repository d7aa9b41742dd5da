// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avolkau/minipress/internal/markdown"
	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
	"github.com/avolkau/minipress/internal/validate"
)

// PostsPerPage is the number of posts to display per page on the public site.
const PostsPerPage = 10

// FeaturedPostsLimit is the number of featured posts shown on the home page.
const FeaturedPostsLimit = 3

// PublicHandler handles the public site routes.
type PublicHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	validator *validate.Validator
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(db *sql.DB, renderer *render.Renderer) *PublicHandler {
	return &PublicHandler{
		queries:   store.New(db),
		renderer:  renderer,
		validator: validate.New(db),
	}
}

// HomeData holds data for the home page template.
type HomeData struct {
	FeaturedPosts []store.PostWithAuthor
	Posts         []store.PostWithAuthor
	Page          int
	TotalPages    int
	HasPrev       bool
	HasNext       bool
	PrevPage      int
	NextPage      int
}

// Home handles GET / - the published post feed with featured posts on top.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.queries.CountPublishedPosts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count published posts", "error", err)
		return
	}
	page, totalPages := NormalizePagination(page, int(total), PostsPerPage)

	posts, err := h.queries.ListPublishedPosts(r.Context(), store.ListPublishedPostsParams{
		Limit:  PostsPerPage,
		Offset: int64((page - 1) * PostsPerPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list published posts", "error", err)
		return
	}

	featured, err := h.queries.ListFeaturedPosts(r.Context(), FeaturedPostsLimit)
	if err != nil {
		logAndInternalError(w, "failed to list featured posts", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "public/home", render.TemplateData{
		Title: "Home",
		Data: HomeData{
			FeaturedPosts: featured,
			Posts:         posts,
			Page:          page,
			TotalPages:    totalPages,
			HasPrev:       page > 1,
			HasNext:       page < totalPages,
			PrevPage:      page - 1,
			NextPage:      page + 1,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render home", "error", err)
	}
}

// PostDetailData holds data for the post detail template.
type PostDetailData struct {
	Post     store.PostWithAuthor
	BodyHTML template.HTML
	Comments []store.CommentWithDetails
	LoggedIn bool
}

// PostShow handles GET /posts/{slug} - a single published post with its
// published comments. Drafts and deleted posts 404 regardless of viewer.
func (h *PublicHandler) PostShow(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	post, err := h.queries.GetPublishedPost(r.Context(), store.GetPublishedPostParams{
		Slug:     slug,
		ViewerID: middleware.GetUserID(r),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to get post", "error", err, "slug", slug)
		return
	}

	bodyHTML, err := markdown.Render(post.Body)
	if err != nil {
		logAndInternalError(w, "failed to render post body", "error", err, "post_id", post.ID)
		return
	}

	comments, err := h.queries.ListPublishedCommentsForPost(r.Context(), post.ID)
	if err != nil {
		logAndInternalError(w, "failed to list comments", "error", err, "post_id", post.ID)
		return
	}

	if err := h.renderer.Render(w, r, "public/post", render.TemplateData{
		Title: post.Title,
		Data: PostDetailData{
			Post:     post,
			BodyHTML: bodyHTML,
			Comments: comments,
			LoggedIn: middleware.GetUser(r) != nil,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render post", "error", err, "slug", slug)
	}
}

// ContactFormData holds data for the contact form template.
type ContactFormData struct {
	Errors     validate.Errors
	FormValues map[string]string
	Reference  string
}

// ContactForm handles GET /contact - displays the contact form.
func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "public/contact", render.TemplateData{
		Title: "Contact",
		Data: ContactFormData{
			Errors:     validate.Errors{},
			FormValues: map[string]string{},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render contact form", "error", err)
	}
}

// ContactSubmit handles POST /contact - stores a contact message and shows
// the generated reference code.
func (h *PublicHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectContact) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	message := strings.TrimSpace(r.FormValue("message"))

	formValues := map[string]string{
		"name":    name,
		"email":   email,
		"subject": subject,
		"message": message,
	}

	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"name":    name,
		"email":   email,
		"subject": subject,
		"message": message,
	}, map[string]string{
		"name":    "required|max:100",
		"email":   "required|email|max:254",
		"subject": "required|max:200",
		"message": "required|max:5000",
	})

	if validationErrors.Any() {
		if err := h.renderer.Render(w, r, "public/contact", render.TemplateData{
			Title: "Contact",
			Data: ContactFormData{
				Errors:     validationErrors,
				FormValues: formValues,
			},
		}); err != nil {
			logAndInternalError(w, "failed to render contact form", "error", err)
		}
		return
	}

	msg, err := h.queries.CreateContactMessage(r.Context(), store.CreateContactMessageParams{
		Reference: uuid.NewString(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to create contact message", "error", err)
		flashError(w, r, h.renderer, redirectContact, "Error sending message. Please try again.")
		return
	}

	slog.Info("contact message received", "message_id", msg.ID, "reference", msg.Reference)

	flashSuccess(w, r, h.renderer, redirectContact,
		fmt.Sprintf("Thank you for your message. Your reference is %s.", msg.Reference))
}
