// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides URL slug generation and validation with Unicode
// normalization.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps generated slugs. Long titles are truncated at a
// hyphen boundary where possible.
const MaxSlugLength = 100

var (
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug: accents are
// decomposed and stripped, the rest lowercased, spaces become hyphens,
// and anything outside [a-z0-9-] is dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		result = result[:MaxSlugLength]
		if i := strings.LastIndexByte(result, '-'); i > 0 {
			result = result[:i]
		}
		result = strings.TrimRight(result, "-")
	}

	return result
}

// IsValidSlug reports whether s is a well-formed slug: non-empty,
// only [a-z0-9-], no leading, trailing, or doubled hyphens.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
