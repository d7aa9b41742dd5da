package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/avolkau/minipress/internal/store"
)

func TestHomeListsPublishedPosts(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	author := createTestUser(t, db, testUser{Email: "author@example.com", Name: "Author"})
	createTestPost(t, db, testPost{UserID: author.ID, Title: "Visible", Slug: "visible"})
	createTestPost(t, db, testPost{UserID: author.ID, Title: "Hidden", Slug: "hidden", Status: store.PostStatusDraft})

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	h.Home(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "Visible") {
		t.Error("home page must list published posts")
	}
	if strings.Contains(body, "Hidden") {
		t.Error("home page must not list drafts")
	}
}

func TestPostShowRendersPublishedPost(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	author := createTestUser(t, db, testUser{Email: "author@example.com", Name: "Author"})
	createTestPost(t, db, testPost{
		UserID: author.ID, Title: "Hello World", Slug: "hello-world",
		Body: "Some **bold** text.",
	})

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/posts/hello-world", nil))
	r = requestWithURLParams(r, map[string]string{"slug": "hello-world"})
	w := httptest.NewRecorder()
	h.PostShow(w, r)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "Hello World") {
		t.Error("post page must show the title")
	}
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("post body must be rendered as markdown")
	}
}

func TestPostShowDraftIs404(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	author := createTestUser(t, db, testUser{Email: "author@example.com", Name: "Author"})
	createTestPost(t, db, testPost{
		UserID: author.ID, Title: "Draft", Slug: "draft", Status: store.PostStatusDraft,
	})

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/posts/draft", nil))
	r = requestWithURLParams(r, map[string]string{"slug": "draft"})
	w := httptest.NewRecorder()
	h.PostShow(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestPostShowUnknownSlugIs404(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	r := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/posts/nope", nil))
	r = requestWithURLParams(r, map[string]string{"slug": "nope"})
	w := httptest.NewRecorder()
	h.PostShow(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestContactSubmitStoresMessage(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	r := newFormRequest(http.MethodPost, "/contact", url.Values{
		"name":    {"Visitor"},
		"email":   {"visitor@example.com"},
		"subject": {"Question"},
		"message": {"How do I reset my password?"},
	})
	r = requestWithSession(sm, r)
	w := httptest.NewRecorder()
	h.ContactSubmit(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/contact" {
		t.Errorf("Location = %q, want /contact", loc)
	}

	var reference string
	err := db.QueryRow(`SELECT reference FROM contact_messages WHERE email = ?`, "visitor@example.com").
		Scan(&reference)
	if err != nil {
		t.Fatalf("message not stored: %v", err)
	}
	if reference == "" {
		t.Error("stored message must carry a reference code")
	}
}

func TestContactSubmitValidationFailure(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewPublicHandler(db, testRenderer(t, sm))

	r := newFormRequest(http.MethodPost, "/contact", url.Values{
		"name":    {"Visitor"},
		"email":   {"not-an-email"},
		"subject": {""},
		"message": {"Hello"},
	})
	r = requestWithSession(sm, r)
	w := httptest.NewRecorder()
	h.ContactSubmit(w, r)

	// Invalid input re-renders the form with the entered values.
	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Visitor") {
		t.Error("re-rendered form must keep the entered name")
	}

	var n int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		t.Fatalf("failed to count messages: %v", err)
	}
	if n != 0 {
		t.Errorf("contact_messages = %d, want 0", n)
	}
}
