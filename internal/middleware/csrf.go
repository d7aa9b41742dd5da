// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// Session and form keys for the CSRF token.
const (
	SessionKeyCSRFToken = "csrf_token"
	CSRFFormField       = "csrf_token"
)

const csrfTokenBytes = 32

// CSRFToken returns the session's CSRF token, generating and storing one
// on first use. Must be called within a LoadAndSave-wrapped request.
func CSRFToken(r *http.Request, sm *scs.SessionManager) string {
	if token := sm.GetString(r.Context(), SessionKeyCSRFToken); token != "" {
		return token
	}

	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		slog.Error("generating csrf token", "error", err)
		return ""
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	sm.Put(r.Context(), SessionKeyCSRFToken, token)
	return token
}

// CSRF verifies that state-changing requests carry the session's CSRF
// token in the csrf_token form field. On mismatch the request is rejected
// with a flash message and a redirect back to the referring page.
func CSRF(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			want := sm.GetString(r.Context(), SessionKeyCSRFToken)
			got := r.PostFormValue(CSRFFormField)

			if want == "" || got == "" ||
				subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
				slog.Warn("csrf validation failed",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				sm.Put(r.Context(), "flash", "Your session expired. Please try again.")
				sm.Put(r.Context(), "flash_type", "error")

				target := r.Referer()
				if target == "" {
					target = "/"
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SkipCSRF exempts exact paths from CSRF verification. Useful for
// endpoints driven by non-browser clients.
func SkipCSRF(sm *scs.SessionManager, paths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(paths))
	for _, p := range paths {
		skip[p] = true
	}

	verify := CSRF(sm)

	return func(next http.Handler) http.Handler {
		verified := verify(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			verified.ServeHTTP(w, r)
		})
	}
}
