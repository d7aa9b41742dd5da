// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate implements a declarative, pipe-separated rule engine
// for form input, e.g. "required|email|unique:users,email".
package validate

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// allowedUniqueTargets is the closed set of table/column pairs the unique
// rule may query. Rule strings live next to handler code, but keeping an
// allow-list means a typo can never turn into a query against arbitrary
// identifiers.
var allowedUniqueTargets = map[string]bool{
	"users.email": true,
	"users.name":  true,
	"posts.slug":  true,
}

// Errors maps field names to their failure messages, in rule order.
type Errors map[string][]string

// Any reports whether any field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// First returns the first message for a field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Flatten returns all messages ordered by field name, preserving rule
// order within each field. Sorting keeps the output stable regardless of
// map iteration order.
func (e Errors) Flatten() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var flat []string
	for _, f := range fields {
		flat = append(flat, e[f]...)
	}
	return flat
}

// Validator checks field values against rule strings. The database handle
// is only used by the unique rule; a nil handle makes unique fail closed.
type Validator struct {
	db *sql.DB
}

// New creates a Validator.
func New(db *sql.DB) *Validator {
	return &Validator{db: db}
}

// Validate checks data against rules and returns the collected errors.
// Rules for one field are pipe-separated and applied in order; rule names
// that are not recognized are silently skipped, so new rules can be
// rolled out without breaking old call sites. Every failing rule appends
// its own message.
func (v *Validator) Validate(ctx context.Context, data map[string]any, rules map[string]string) Errors {
	errs := make(Errors)

	for field, ruleStr := range rules {
		value := data[field]

		for _, rule := range strings.Split(ruleStr, "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			name, param := rule, ""
			if i := strings.Index(rule, ":"); i >= 0 {
				name, param = rule[:i], rule[i+1:]
			}

			if msg := v.apply(ctx, name, param, field, value, data); msg != "" {
				errs[field] = append(errs[field], msg)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// apply runs one rule and returns a failure message, or "" on success.
func (v *Validator) apply(ctx context.Context, name, param, field string, value any, data map[string]any) string {
	switch name {
	case "required":
		if isEmpty(value) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		s := asString(value)
		if s == "" {
			return ""
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Sprintf("The %s field must be a valid email address.", field)
		}
	case "numeric":
		s := asString(value)
		if s == "" {
			return ""
		}
		if _, ok := asFloat(value); !ok {
			return fmt.Sprintf("The %s field must be numeric.", field)
		}
	case "min":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil || isEmpty(value) {
			return ""
		}
		if n, ok := asFloat(value); ok {
			if n < limit {
				return fmt.Sprintf("The %s field must be at least %s.", field, param)
			}
		} else if float64(utf8.RuneCountInString(asString(value))) < limit {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, param)
		}
	case "max":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil || isEmpty(value) {
			return ""
		}
		if n, ok := asFloat(value); ok {
			if n > limit {
				return fmt.Sprintf("The %s field must not exceed %s.", field, param)
			}
		} else if float64(utf8.RuneCountInString(asString(value))) > limit {
			return fmt.Sprintf("The %s field must not exceed %s characters.", field, param)
		}
	case "in":
		s := asString(value)
		if s == "" {
			return ""
		}
		for _, opt := range strings.Split(param, ",") {
			if s == opt {
				return ""
			}
		}
		return fmt.Sprintf("The %s field must be one of: %s.", field, param)
	case "same":
		if asString(value) != asString(data[param]) {
			return fmt.Sprintf("The %s field must match %s.", field, param)
		}
	case "unique":
		return v.applyUnique(ctx, param, field, value)
	}
	return ""
}

// applyUnique checks "table,column[,ignoreID]" against the allow-list and
// the database.
func (v *Validator) applyUnique(ctx context.Context, param, field string, value any) string {
	parts := strings.Split(param, ",")
	if len(parts) < 2 {
		return fmt.Sprintf("The %s field has a misconfigured uniqueness rule.", field)
	}
	table, column := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	if !allowedUniqueTargets[table+"."+column] {
		return fmt.Sprintf("The %s field has a misconfigured uniqueness rule.", field)
	}
	if v.db == nil {
		return fmt.Sprintf("The %s field could not be checked for uniqueness.", field)
	}

	s := asString(value)
	if s == "" {
		return ""
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, column)
	args := []any{s}
	if len(parts) >= 3 {
		if ignoreID, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64); err == nil && ignoreID > 0 {
			query += " AND id != ?"
			args = append(args, ignoreID)
		}
	}

	var count int64
	if err := v.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return fmt.Sprintf("The %s field could not be checked for uniqueness.", field)
	}
	if count > 0 {
		return fmt.Sprintf("The %s has already been taken.", field)
	}
	return ""
}

// isEmpty reports whether a value fails the required rule.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// asString renders a value the way it arrived on a form.
func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asFloat returns the numeric interpretation of a value, if it has one.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
