package validate

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkau/minipress/internal/store"
)

func testDB(t *testing.T) *Validator {
	t.Helper()
	db, err := store.NewDB(t.TempDir() + "/validate-test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	return New(db)
}

func TestRequired(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		value any
		fails bool
	}{
		{"missing", nil, true},
		{"empty_string", "", true},
		{"whitespace", "   ", true},
		{"empty_slice", []string{}, true},
		{"zero_is_present", 0, false},
		{"false_is_present", false, false},
		{"filled", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(ctx, map[string]any{"f": tt.value}, map[string]string{"f": "required"})
			assert.Equal(t, tt.fails, errs.Any())
		})
	}
}

func TestEmailSkipsEmpty(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	errs := v.Validate(ctx, map[string]any{"email": ""}, map[string]string{"email": "email"})
	assert.False(t, errs.Any(), "empty value passes a bare email rule")

	errs = v.Validate(ctx, map[string]any{"email": "not-an-email"}, map[string]string{"email": "email"})
	assert.True(t, errs.Any())

	errs = v.Validate(ctx, map[string]any{"email": "a@example.com"}, map[string]string{"email": "email"})
	assert.False(t, errs.Any())
}

func TestNumeric(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	tests := []struct {
		value any
		fails bool
	}{
		{"12", false},
		{"12.5", false},
		{12, false},
		{"", false}, // skip when empty
		{"abc", true},
		{"12abc", true},
	}

	for _, tt := range tests {
		errs := v.Validate(ctx, map[string]any{"n": tt.value}, map[string]string{"n": "numeric"})
		assert.Equal(t, tt.fails, errs.Any(), "value %v", tt.value)
	}
}

func TestMinMax(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	// Numeric values compare numerically
	errs := v.Validate(ctx, map[string]any{"age": "17"}, map[string]string{"age": "numeric|min:18"})
	assert.True(t, errs.Any())
	errs = v.Validate(ctx, map[string]any{"age": "18"}, map[string]string{"age": "numeric|min:18"})
	assert.False(t, errs.Any())

	// Non-numeric strings compare by rune length
	errs = v.Validate(ctx, map[string]any{"name": "ab"}, map[string]string{"name": "min:3"})
	assert.True(t, errs.Any())
	errs = v.Validate(ctx, map[string]any{"name": "abc"}, map[string]string{"name": "min:3"})
	assert.False(t, errs.Any())
	errs = v.Validate(ctx, map[string]any{"name": "héllo"}, map[string]string{"name": "max:5"})
	assert.False(t, errs.Any(), "rune count, not byte count")
	errs = v.Validate(ctx, map[string]any{"bio": "abcdef"}, map[string]string{"bio": "max:5"})
	assert.True(t, errs.Any())
}

func TestIn(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	errs := v.Validate(ctx, map[string]any{"role": "editor"}, map[string]string{"role": "in:admin,editor,user"})
	assert.False(t, errs.Any())

	errs = v.Validate(ctx, map[string]any{"role": "root"}, map[string]string{"role": "in:admin,editor,user"})
	assert.True(t, errs.Any())

	// Matching is case-sensitive
	errs = v.Validate(ctx, map[string]any{"role": "Admin"}, map[string]string{"role": "in:admin,editor,user"})
	assert.True(t, errs.Any())
}

func TestSame(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	data := map[string]any{"password": "secret", "password_confirm": "secret"}
	errs := v.Validate(ctx, data, map[string]string{"password_confirm": "same:password"})
	assert.False(t, errs.Any())

	data["password_confirm"] = "other"
	errs = v.Validate(ctx, data, map[string]string{"password_confirm": "same:password"})
	assert.True(t, errs.Any())
}

func TestUnknownRulesIgnored(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	errs := v.Validate(ctx, map[string]any{"f": "x"}, map[string]string{"f": "sparkly|required|florb:3"})
	assert.False(t, errs.Any())
}

func TestMultipleFailuresAccumulateInRuleOrder(t *testing.T) {
	v := New(nil)
	ctx := context.Background()

	errs := v.Validate(ctx, map[string]any{"email": nil}, map[string]string{"email": "required|min:5"})
	require.True(t, errs.Any())
	msgs := errs["email"]
	require.Len(t, msgs, 1, "min skips empty values; only required fires")
	assert.Contains(t, msgs[0], "required")

	errs = v.Validate(ctx, map[string]any{"code": "ab"}, map[string]string{"code": "min:3|in:xyz,pqr"})
	require.Len(t, errs["code"], 2)
	assert.Contains(t, errs["code"][0], "at least")
	assert.Contains(t, errs["code"][1], "one of")
}

func TestUnique(t *testing.T) {
	v := testDB(t)
	ctx := context.Background()

	q := store.New(v.db)
	now := time.Now()
	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Name: "Taken", Email: "taken@example.com", PasswordHash: "x",
		Role: store.RoleUser, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	// Fresh value passes
	errs := v.Validate(ctx, map[string]any{"email": "fresh@example.com"},
		map[string]string{"email": "unique:users,email"})
	assert.False(t, errs.Any())

	// Taken value fails
	errs = v.Validate(ctx, map[string]any{"email": "taken@example.com"},
		map[string]string{"email": "unique:users,email"})
	assert.True(t, errs.Any())

	// Unless the matching row is the one being updated
	errs = v.Validate(ctx, map[string]any{"email": "taken@example.com"},
		map[string]string{"email": "unique:users,email," + strconv.FormatInt(user.ID, 10)})
	assert.False(t, errs.Any())
}

func TestUniqueRejectsUnknownTargets(t *testing.T) {
	v := testDB(t)
	ctx := context.Background()

	for _, rule := range []string{
		"unique:users,password_hash",
		"unique:sqlite_master,name",
		"unique:users",
	} {
		errs := v.Validate(ctx, map[string]any{"f": "x"}, map[string]string{"f": rule})
		assert.True(t, errs.Any(), "rule %q must fail closed", rule)
	}
}

func TestFlatten(t *testing.T) {
	errs := Errors{
		"zulu":  {"z1"},
		"alpha": {"a1", "a2"},
	}
	assert.Equal(t, []string{"a1", "a2", "z1"}, errs.Flatten())
	assert.Equal(t, "a1", errs.First("alpha"))
	assert.Equal(t, "", errs.First("missing"))
}
