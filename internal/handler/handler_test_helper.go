package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/avolkau/minipress/internal/auth"
	"github.com/avolkau/minipress/internal/middleware"
	"github.com/avolkau/minipress/internal/render"
	"github.com/avolkau/minipress/internal/store"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every pool connection gets its own :memory: database, so keep
	// all queries on a single connection.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT      NOT NULL,
			email         TEXT      NOT NULL UNIQUE,
			password_hash TEXT      NOT NULL,
			role          TEXT      NOT NULL DEFAULT 'user',
			is_active     INTEGER   NOT NULL DEFAULT 1,
			last_login_at TIMESTAMP,
			created_at    TIMESTAMP NOT NULL,
			updated_at    TIMESTAMP NOT NULL,
			deleted_at    TIMESTAMP
		);

		CREATE TABLE posts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         INTEGER   NOT NULL REFERENCES users (id),
			title           TEXT      NOT NULL,
			slug            TEXT      NOT NULL UNIQUE,
			body            TEXT      NOT NULL DEFAULT '',
			excerpt         TEXT      NOT NULL DEFAULT '',
			featured_image  TEXT      NOT NULL DEFAULT '',
			status          TEXT      NOT NULL DEFAULT 'draft',
			is_featured     INTEGER   NOT NULL DEFAULT 0,
			likes_count     INTEGER   NOT NULL DEFAULT 0,
			favorites_count INTEGER   NOT NULL DEFAULT 0,
			comments_count  INTEGER   NOT NULL DEFAULT 0,
			published_at    TIMESTAMP,
			created_at      TIMESTAMP NOT NULL,
			updated_at      TIMESTAMP NOT NULL
		);

		CREATE TABLE comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER   NOT NULL REFERENCES posts (id),
			user_id    INTEGER   NOT NULL REFERENCES users (id),
			body       TEXT      NOT NULL,
			status     TEXT      NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE post_likes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER   NOT NULL REFERENCES posts (id),
			user_id    INTEGER   NOT NULL REFERENCES users (id),
			created_at TIMESTAMP NOT NULL,
			UNIQUE (post_id, user_id)
		);

		CREATE TABLE post_favorites (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER   NOT NULL REFERENCES posts (id),
			user_id    INTEGER   NOT NULL REFERENCES users (id),
			created_at TIMESTAMP NOT NULL,
			UNIQUE (post_id, user_id)
		);

		CREATE TABLE contact_messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			reference  TEXT      NOT NULL UNIQUE,
			name       TEXT      NOT NULL,
			email      TEXT      NOT NULL,
			subject    TEXT      NOT NULL DEFAULT '',
			message    TEXT      NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			level      TEXT      NOT NULL,
			category   TEXT      NOT NULL,
			message    TEXT      NOT NULL,
			user_id    INTEGER,
			metadata   TEXT      NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE sessions (
			token  TEXT PRIMARY KEY,
			data   BLOB NOT NULL,
			expiry REAL NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer creates a renderer backed by the on-disk templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	renderer, err := render.New(render.Config{
		TemplatesFS:    os.DirFS("../../web/templates"),
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("failed to create test renderer: %v", err)
	}
	return renderer
}

// testUser describes a user to seed into the test database.
type testUser struct {
	Email    string
	Name     string
	Role     string
	Password string
	Inactive bool
}

// createTestUser creates a test user with a real password hash.
func createTestUser(t *testing.T, db *sql.DB, user testUser) store.User {
	t.Helper()

	if user.Password == "" {
		user.Password = "password123"
	}
	if user.Role == "" {
		user.Role = store.RoleUser
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now()
	isActive := 1
	if user.Inactive {
		isActive = 0
	}
	result, err := db.Exec(
		`INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, hash, user.Role, isActive, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.User{
		ID:           id,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
		IsActive:     !user.Inactive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// testPost describes a post to seed into the test database.
type testPost struct {
	UserID     int64
	Title      string
	Slug       string
	Body       string
	Status     string
	IsFeatured bool
}

// createTestPost creates a test post. Published posts get a published_at.
func createTestPost(t *testing.T, db *sql.DB, post testPost) store.Post {
	t.Helper()

	if post.Status == "" {
		post.Status = store.PostStatusPublished
	}
	if post.Body == "" {
		post.Body = "Test body."
	}

	now := time.Now()
	var publishedAt any
	if post.Status == store.PostStatusPublished {
		publishedAt = now
	}
	result, err := db.Exec(
		`INSERT INTO posts (user_id, title, slug, body, status, is_featured, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.UserID, post.Title, post.Slug, post.Body, post.Status, post.IsFeatured, publishedAt, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.Post{
		ID:         id,
		UserID:     post.UserID,
		Title:      post.Title,
		Slug:       post.Slug,
		Body:       post.Body,
		Status:     post.Status,
		IsFeatured: post.IsFeatured,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// createTestComment creates a comment in the given status.
func createTestComment(t *testing.T, db *sql.DB, postID, userID int64, body, status string) store.Comment {
	t.Helper()

	now := time.Now()
	result, err := db.Exec(
		`INSERT INTO comments (post_id, user_id, body, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		postID, userID, body, status, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.Comment{
		ID:        id,
		PostID:    postID,
		UserID:    userID,
		Body:      body,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newFormRequest builds a form-encoded request.
func newFormRequest(method, target string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser puts a user into the request context the way the
// LoadUser middleware does.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
