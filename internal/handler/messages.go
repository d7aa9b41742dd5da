// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
)

// MessagesPerPage is the number of contact messages displayed per page.
const MessagesPerPage = 20

// MessagesHandler handles the admin contact message inbox.
type MessagesHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(db *sql.DB, renderer *render.Renderer) *MessagesHandler {
	return &MessagesHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// MessagesListData holds data for the messages list template.
type MessagesListData struct {
	Messages      []store.ContactMessage
	TotalMessages int64
	Pagination    Pagination
}

// List handles GET /admin/messages - a read-only, paginated inbox of
// contact form submissions, newest first.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	messages, total, err := ListAndCount(
		func() ([]store.ContactMessage, error) {
			return h.queries.ListContactMessages(r.Context(), store.ListContactMessagesParams{
				Limit:  MessagesPerPage,
				Offset: int64((page - 1) * MessagesPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountContactMessages(r.Context()) },
	)
	if err != nil {
		logAndInternalError(w, "failed to list contact messages", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/messages_list", render.TemplateData{
		Title: "Messages",
		Data: MessagesListData{
			Messages:      messages,
			TotalMessages: total,
			Pagination:    Paginate(page, total, MessagesPerPage, redirectAdminMessages, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "failed to render messages list", "error", err)
	}
}
