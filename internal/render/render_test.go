// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
)

func testTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}<html><body>{{template "flash" .}}{{template "content" .}}</body></html>{{end}}`),
		},
		"layouts/admin.html": &fstest.MapFile{
			Data: []byte(`{{define "admin-nav"}}<nav>admin</nav>{{end}}`),
		},
		"partials/flash.html": &fstest.MapFile{
			Data: []byte(`{{define "flash"}}{{if .Flash}}<div class="flash {{.FlashType}}">{{.Flash}}</div>{{end}}{{end}}`),
		},
		"public/home.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}<h1>{{.Title}}</h1>{{end}}`),
		},
		"auth/login.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}<form><input name="csrf_token" value="{{.CSRFToken}}"></form>{{end}}`),
		},
		"admin/dashboard.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{template "admin-nav" .}}<p>dash</p>{{end}}`),
		},
	}
}

func testRenderer(t *testing.T, sm *scs.SessionManager) *Renderer {
	t.Helper()
	r, err := New(Config{TemplatesFS: testTemplatesFS(), SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewParsesAllGroups(t *testing.T) {
	r := testRenderer(t, nil)

	for _, name := range []string{"public/home", "auth/login", "admin/dashboard"} {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %q not parsed", name)
		}
	}
}

func TestRenderPublicPage(t *testing.T) {
	r := testRenderer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(rec, req, "public/home", TemplateData{Title: "Welcome"}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Welcome</h1>") {
		t.Errorf("body missing title: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderAdminPageUsesAdminLayout(t *testing.T) {
	r := testRenderer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if err := r.Render(rec, req, "admin/dashboard", TemplateData{}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(rec.Body.String(), "<nav>admin</nav>") {
		t.Errorf("admin layout partial missing: %s", rec.Body.String())
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := testRenderer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(rec, req, "public/missing", TemplateData{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRenderPopsFlash(t *testing.T) {
	sm := scs.New()
	r := testRenderer(t, sm)

	var first, second string
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.SetFlash(req, "Post created.", "success")

		rec := httptest.NewRecorder()
		if err := r.Render(rec, req, "public/home", TemplateData{}); err != nil {
			t.Errorf("Render: %v", err)
		}
		first = rec.Body.String()

		rec = httptest.NewRecorder()
		if err := r.Render(rec, req, "public/home", TemplateData{}); err != nil {
			t.Errorf("Render: %v", err)
		}
		second = rec.Body.String()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(first, `class="flash success"`) || !strings.Contains(first, "Post created.") {
		t.Errorf("first render missing flash: %s", first)
	}
	if strings.Contains(second, "Post created.") {
		t.Errorf("flash not consumed on first render: %s", second)
	}
}

func TestRenderInjectsCSRFToken(t *testing.T) {
	sm := scs.New()
	r := testRenderer(t, sm)

	var body string
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := httptest.NewRecorder()
		if err := r.Render(rec, req, "auth/login", TemplateData{}); err != nil {
			t.Errorf("Render: %v", err)
		}
		body = rec.Body.String()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))

	if strings.Contains(body, `value=""`) {
		t.Errorf("CSRF token not injected: %s", body)
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := (&Renderer{}).templateFuncs()

	formatDate := funcs["formatDate"].(func(time.Time) string)
	testTime := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	if got := formatDate(testTime); got != "Mar 15, 2025" {
		t.Errorf("formatDate() = %q, want %q", got, "Mar 15, 2025")
	}

	truncate := funcs["truncate"].(func(string, int) string)
	if got := truncate("hello world", 5); got != "hello..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	// Cuts on rune boundaries, not bytes.
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate() = %q, want %q", got, "héllo...")
	}
	if got := truncate("日本語のテキスト", 3); got != "日本語..." {
		t.Errorf("truncate() = %q, want %q", got, "日本語...")
	}

	seq := funcs["seq"].(func(int, int) []int)
	if got := seq(1, 3); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("seq(1,3) = %v", got)
	}

	nl2br := funcs["nl2br"].(func(string) template.HTML)
	if got := nl2br("a\nb<script>"); got != "a<br>b&lt;script&gt;" {
		t.Errorf("nl2br() = %q", got)
	}
}
