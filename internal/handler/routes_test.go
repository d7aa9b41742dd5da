package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// The admin post routes mix a literal /new path with an {id} placeholder
// on the same prefix. chi must route /admin/posts/new to the form, never
// treat "new" as an id.
func TestAdminPostRoutePrecedence(t *testing.T) {
	var hit, gotID string
	record := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hit = name
			gotID = chi.URLParam(r, "id")
		}
	}

	r := chi.NewRouter()
	r.Route(RouteAdmin, func(r chi.Router) {
		r.Get(RoutePosts, record("list"))
		r.Get(RoutePosts+RouteSuffixNew, record("new"))
		r.Get(RoutePostsID, record("edit"))
	})

	tests := []struct {
		path   string
		want   string
		wantID string
	}{
		{path: "/admin/posts", want: "list"},
		{path: "/admin/posts/new", want: "new"},
		{path: "/admin/posts/42", want: "edit", wantID: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			hit, gotID = "", ""
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if hit != tt.want {
				t.Errorf("%s routed to %q, want %q", tt.path, hit, tt.want)
			}
			if gotID != tt.wantID {
				t.Errorf("%s id = %q, want %q", tt.path, gotID, tt.wantID)
			}
		})
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	r := chi.NewRouter()
	r.Get(RouteRoot, func(w http.ResponseWriter, _ *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assertStatus(t, w.Code, http.StatusNotFound)
}
