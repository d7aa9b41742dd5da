// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"testing"
)

func TestListAndCount(t *testing.T) {
	t.Run("both succeed", func(t *testing.T) {
		items := []string{"a", "b", "c"}
		listFn := func() ([]string, error) { return items, nil }
		countFn := func() (int64, error) { return 3, nil }

		result, count, err := ListAndCount(listFn, countFn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 3 {
			t.Errorf("result length = %d, want 3", len(result))
		}
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
	})

	t.Run("list error", func(t *testing.T) {
		listFn := func() ([]int, error) { return nil, errors.New("list failed") }
		countFn := func() (int64, error) { return 10, nil }

		_, _, err := ListAndCount(listFn, countFn)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("count error", func(t *testing.T) {
		listFn := func() ([]int, error) { return []int{1, 2, 3}, nil }
		countFn := func() (int64, error) { return 0, errors.New("count failed") }

		items, _, err := ListAndCount(listFn, countFn)
		if err == nil {
			t.Error("expected error")
		}
		// Items should still be returned even if count fails
		if len(items) != 3 {
			t.Errorf("items should be returned, got %d items", len(items))
		}
	})

	t.Run("empty list", func(t *testing.T) {
		listFn := func() ([]string, error) { return []string{}, nil }
		countFn := func() (int64, error) { return 0, nil }

		result, count, err := ListAndCount(listFn, countFn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 0 {
			t.Errorf("result length = %d, want 0", len(result))
		}
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})

	t.Run("with struct type", func(t *testing.T) {
		type Item struct {
			ID   int64
			Name string
		}
		items := []Item{{1, "First"}, {2, "Second"}}
		listFn := func() ([]Item, error) { return items, nil }
		countFn := func() (int64, error) { return 2, nil }

		result, count, err := ListAndCount(listFn, countFn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 2 {
			t.Errorf("result length = %d, want 2", len(result))
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
		if result[0].Name != "First" {
			t.Errorf("first item name = %q, want %q", result[0].Name, "First")
		}
	})
}
