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
	"github.com/avolkau/minipress/internal/util"
	"github.com/avolkau/minipress/internal/validate"
)

// AdminPostsPerPage is the number of posts displayed per admin page.
const AdminPostsPerPage = 20

// PostsHandler handles admin post management routes.
type PostsHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	validator *validate.Validator
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(db *sql.DB, renderer *render.Renderer) *PostsHandler {
	return &PostsHandler{
		queries:   store.New(db),
		renderer:  renderer,
		validator: validate.New(db),
	}
}

// PostsListData holds data for the admin posts list template.
type PostsListData struct {
	Posts      []store.PostWithAuthor
	TotalPosts int64
	Pagination Pagination
}

// List handles GET /admin/posts - a paginated list of non-deleted posts.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	posts, total, err := ListAndCount(
		func() ([]store.PostWithAuthor, error) {
			return h.queries.ListPosts(r.Context(), store.ListPostsParams{
				Limit:  AdminPostsPerPage,
				Offset: int64((page - 1) * AdminPostsPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountPosts(r.Context()) },
	)
	if err != nil {
		logAndInternalError(w, "failed to list posts", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/posts_list", render.TemplateData{
		Title: "Posts",
		Data: PostsListData{
			Posts:      posts,
			TotalPosts: total,
			Pagination: Paginate(page, total, AdminPostsPerPage, redirectAdminPosts, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render posts list", "error", err)
	}
}

// PostFormData holds data for the post form template.
type PostFormData struct {
	Post       store.Post
	IsEdit     bool
	Errors     validate.Errors
	FormValues map[string]string
}

// NewForm handles GET /admin/posts/new - displays the new post form.
func (h *PostsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/posts_form", render.TemplateData{
		Title: "New Post",
		Data: PostFormData{
			Errors:     validate.Errors{},
			FormValues: map[string]string{},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render post form", "error", err)
	}
}

// Create handles POST /admin/posts - creates a new draft post.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminPostsNew) {
		return
	}

	form, formValues := h.postFormValues(r)
	validationErrors := h.validatePostForm(r, form, 0)

	if validationErrors.Any() {
		if err := h.renderer.Render(w, r, "admin/posts_form", render.TemplateData{
			Title: "New Post",
			Data: PostFormData{
				Errors:     validationErrors,
				FormValues: formValues,
			},
		}); err != nil {
			logAndInternalError(w, "failed to render post form", "error", err)
		}
		return
	}

	now := time.Now()
	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		UserID:        middleware.GetUserID(r),
		Title:         form.Title,
		Slug:          form.Slug,
		Body:          form.Body,
		Excerpt:       form.Excerpt,
		FeaturedImage: form.FeaturedImage,
		Status:        store.PostStatusDraft,
		IsFeatured:    form.IsFeatured,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		slog.Error("failed to create post", "error", err)
		flashError(w, r, h.renderer, redirectAdminPostsNew, "Error creating post")
		return
	}

	slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "created_by", post.UserID)
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post created")
}

// EditForm handles GET /admin/posts/{id} - displays the edit post form.
func (h *PostsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPosts, "Invalid post ID")
		return
	}

	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", id,
		func(id int64) (store.Post, error) { return h.queries.GetPostByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/posts_form", render.TemplateData{
		Title: "Edit Post",
		Data: PostFormData{
			Post:   post,
			IsEdit: true,
			Errors: validate.Errors{},
			FormValues: map[string]string{
				"title":          post.Title,
				"slug":           post.Slug,
				"body":           post.Body,
				"excerpt":        post.Excerpt,
				"featured_image": post.FeaturedImage,
			},
		},
	}); err != nil {
		logAndInternalError(w, "failed to render post form", "error", err)
	}
}

// Update handles PUT /admin/posts/{id} - updates title, slug, body and the
// featured flag. Status is changed through Publish and Unpublish instead.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPosts, "Invalid post ID")
		return
	}

	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", id,
		func(id int64) (store.Post, error) { return h.queries.GetPostByID(r.Context(), id) })
	if !ok {
		return
	}

	formURL := fmt.Sprintf(redirectAdminPostsID, id)
	if !parseFormOrRedirect(w, r, h.renderer, formURL) {
		return
	}

	form, formValues := h.postFormValues(r)
	validationErrors := h.validatePostForm(r, form, id)

	if validationErrors.Any() {
		if err := h.renderer.Render(w, r, "admin/posts_form", render.TemplateData{
			Title: "Edit Post",
			Data: PostFormData{
				Post:       post,
				IsEdit:     true,
				Errors:     validationErrors,
				FormValues: formValues,
			},
		}); err != nil {
			logAndInternalError(w, "failed to render post form", "error", err)
		}
		return
	}

	if err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		Title:         form.Title,
		Slug:          form.Slug,
		Body:          form.Body,
		Excerpt:       form.Excerpt,
		FeaturedImage: form.FeaturedImage,
		IsFeatured:    form.IsFeatured,
		UpdatedAt:     time.Now(),
		ID:            id,
	}); err != nil {
		slog.Error("failed to update post", "error", err, "post_id", id)
		flashError(w, r, h.renderer, formURL, "Error updating post")
		return
	}

	slog.Info("post updated", "post_id", id, "updated_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post updated")
}

// Publish handles POST /admin/posts/{id}/publish - makes a draft visible on
// the public site and stamps its publication time.
func (h *PostsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPosts, "Invalid post ID")
		return
	}

	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", id,
		func(id int64) (store.Post, error) { return h.queries.GetPostByID(r.Context(), id) })
	if !ok {
		return
	}
	if post.Status != store.PostStatusDraft {
		flashError(w, r, h.renderer, redirectAdminPosts, "Only drafts can be published")
		return
	}

	if err := h.queries.PublishPost(r.Context(), id, time.Now()); err != nil {
		slog.Error("failed to publish post", "error", err, "post_id", id)
		flashError(w, r, h.renderer, redirectAdminPosts, "Error publishing post")
		return
	}

	slog.Info("post published", "post_id", id, "published_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post published")
}

// Unpublish handles POST /admin/posts/{id}/unpublish - returns a published
// post to draft and clears its publication time.
func (h *PostsHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPosts, "Invalid post ID")
		return
	}

	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", id,
		func(id int64) (store.Post, error) { return h.queries.GetPostByID(r.Context(), id) })
	if !ok {
		return
	}
	if post.Status != store.PostStatusPublished {
		flashError(w, r, h.renderer, redirectAdminPosts, "Only published posts can be unpublished")
		return
	}

	if err := h.queries.UnpublishPost(r.Context(), id, time.Now()); err != nil {
		slog.Error("failed to unpublish post", "error", err, "post_id", id)
		flashError(w, r, h.renderer, redirectAdminPosts, "Error unpublishing post")
		return
	}

	slog.Info("post unpublished", "post_id", id, "unpublished_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post unpublished")
}

// Delete handles DELETE /admin/posts/{id} - soft deletes a post.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPosts, "Invalid post ID")
		return
	}

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", id,
		func(id int64) (store.Post, error) { return h.queries.GetPostByID(r.Context(), id) }); !ok {
		return
	}

	if err := h.queries.SoftDeletePost(r.Context(), id, time.Now()); err != nil {
		slog.Error("failed to delete post", "error", err, "post_id", id)
		flashError(w, r, h.renderer, redirectAdminPosts, "Error deleting post")
		return
	}

	slog.Warn("post deleted", "category", "post", "post_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post deleted")
}

// postForm holds the submitted post fields.
type postForm struct {
	Title         string
	Slug          string
	Body          string
	Excerpt       string
	FeaturedImage string
	IsFeatured    bool
}

// postFormValues reads the post form. A blank slug is derived from the
// title.
func (h *PostsHandler) postFormValues(r *http.Request) (postForm, map[string]string) {
	form := postForm{
		Title:         strings.TrimSpace(r.FormValue("title")),
		Slug:          strings.TrimSpace(r.FormValue("slug")),
		Body:          r.FormValue("body"),
		Excerpt:       strings.TrimSpace(r.FormValue("excerpt")),
		FeaturedImage: strings.TrimSpace(r.FormValue("featured_image")),
		IsFeatured:    r.FormValue("is_featured") == "1",
	}
	if form.Slug == "" {
		form.Slug = util.Slugify(form.Title)
	}
	formValues := map[string]string{
		"title":          form.Title,
		"slug":           form.Slug,
		"body":           form.Body,
		"excerpt":        form.Excerpt,
		"featured_image": form.FeaturedImage,
	}
	return form, formValues
}

// validatePostForm validates the post form. ignoreID excludes the post
// itself from the slug uniqueness check; pass 0 on create.
func (h *PostsHandler) validatePostForm(r *http.Request, form postForm, ignoreID int64) validate.Errors {
	slugRule := "required|max:100"
	if ignoreID > 0 {
		slugRule += fmt.Sprintf("|unique:posts,slug,%d", ignoreID)
	} else {
		slugRule += "|unique:posts,slug"
	}

	validationErrors := h.validator.Validate(r.Context(), map[string]any{
		"title":          form.Title,
		"slug":           form.Slug,
		"body":           form.Body,
		"excerpt":        form.Excerpt,
		"featured_image": form.FeaturedImage,
	}, map[string]string{
		"title":          "required|max:200",
		"slug":           slugRule,
		"body":           "required",
		"excerpt":        "max:500",
		"featured_image": "max:2048",
	})

	if form.Slug != "" && !util.IsValidSlug(form.Slug) {
		if validationErrors == nil {
			validationErrors = validate.Errors{}
		}
		validationErrors["slug"] = append(validationErrors["slug"],
			"The slug may only contain lowercase letters, digits and hyphens.")
	}
	return validationErrors
}
