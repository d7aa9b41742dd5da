// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown renders post bodies from Markdown to sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// policy allows the safe HTML subset bluemonday permits for
// user-generated content, stripping scripts and event handlers.
var policy = bluemonday.UGCPolicy()

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Render converts Markdown source to HTML and sanitizes the result.
// The returned value is safe to embed in templates without escaping.
func Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// SanitizeHTML strips unsafe markup from an HTML fragment without
// Markdown conversion. Used for comment bodies, which are plain text
// but displayed with line breaks preserved.
func SanitizeHTML(fragment string) string {
	return policy.Sanitize(fragment)
}
