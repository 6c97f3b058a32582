package auth

import (
	"context"
	"strings"
	"testing"

	"myfuture/api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "John Doe", "John_Doe"},
		{"already valid", "jdoe_99", "jdoe_99"},
		{"run of disallowed characters", "Anna--Maria  Lee", "Anna_Maria_Lee"},
		{"trims edges", "  @John@  ", "John"},
		{"only disallowed", "!!!", ""},
		{"too short after cleanup", "a.", ""},
		{"empty", "", ""},
		{"truncated to limit", strings.Repeat("a", 40), strings.Repeat("a", 30)},
		{"no trailing underscore after truncation", strings.Repeat("a", 29) + " b", strings.Repeat("a", 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeDisplayName(tt.in))
		})
	}
}

func TestGenerateUsername_Exhausted(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	// Pre-fill so every sampled handle collides
	everything := &takenDirectory{fakeDirectory: dir}
	svc.dir = everything

	_, err := svc.generateUsername(ctx)
	assert.ErrorIs(t, err, ErrUsernameAllocExhausted)
	assert.Equal(t, usernameGenAttempts, everything.lookups)
}

func TestDeriveUsername_SuffixAndFallback(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	// Free base name comes back as-is
	name, err := svc.deriveUsername(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane_Doe", name)

	taken := "Jane_Doe"
	require.NoError(t, dir.Insert(ctx, &model.User{
		ID:       "u1",
		Username: &taken,
		Email:    "jane@example.com",
	}))

	// Collision gets one suffixed retry
	name, err = svc.deriveUsername(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Regexp(t, `^Jane_Doe_[0-9a-f]{4}$`, name)

	// A long base is truncated so the suffixed name stays in bounds
	long := strings.Repeat("a", 30)
	require.NoError(t, dir.Insert(ctx, &model.User{
		ID:       "u2",
		Username: &long,
		Email:    "long@example.com",
	}))

	name, err = svc.deriveUsername(ctx, long)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(name), maxUsernameLen)
	assert.Regexp(t, `^a{25}_[0-9a-f]{4}$`, name)

	// Both attempts colliding yields "" for the caller to fall back
	svc.dir = &takenDirectory{fakeDirectory: dir}
	name, err = svc.deriveUsername(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Empty(t, name)
}

// takenDirectory reports every username as taken.
type takenDirectory struct {
	*fakeDirectory
	lookups int
}

func (d *takenDirectory) FindByUsername(_ context.Context, username string) (*model.User, error) {
	d.lookups++
	return &model.User{ID: "taken", Username: &username}, nil
}
