// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import "net/http"

// MethodOverrideField is the form field HTML forms use to emulate
// PUT, PATCH, and DELETE requests.
const MethodOverrideField = "_method"

// MethodOverride rewrites the method of a POST request when the _method
// form field names PUT, PATCH, or DELETE. Other values are ignored.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.PostFormValue(MethodOverrideField) {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodPatch:
				r.Method = http.MethodPatch
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
