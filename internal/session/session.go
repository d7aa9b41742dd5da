// Package session configures the scs session manager backed by the
// application's SQLite database.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is the absolute session lifetime.
const Lifetime = 24 * time.Hour

// New creates a session manager storing session data in the sessions table.
// In production the cookie uses the __Host- prefix, which requires Secure,
// Path=/ and no Domain attribute.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)
	sm.Lifetime = Lifetime

	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Secure = true
	}

	return sm
}
