// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// StripTrailingSlash redirects "/posts/" style paths to their canonical
// form without the trailing slash (301), keeping the query string. Runs
// of slashes collapse to one redirect. The root path passes through.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if len(p) <= 1 || p[len(p)-1] != '/' {
			next.ServeHTTP(w, r)
			return
		}

		target := strings.TrimRight(p, "/")
		if target == "" {
			target = "/"
		}
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
