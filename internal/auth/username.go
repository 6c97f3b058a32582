package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	maxUsernameLen      = 30
	usernameGenAttempts = 20
)

var disallowedRuns = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// generateUsername samples random user_<6 hex> handles until one is
// free. Exhausting the attempt budget is an allocation failure, it
// never falls back to a colliding name.
func (s *Service) generateUsername(ctx context.Context) (string, error) {
	for range usernameGenAttempts {
		suffix, err := randomHex(3)
		if err != nil {
			return "", err
		}

		candidate := "user_" + suffix

		_, err = s.dir.FindByUsername(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("username lookup failed: %w", err)
		}
	}

	return "", ErrUsernameAllocExhausted
}

// deriveUsername turns a display name into a handle. Returns "" when
// the name normalizes to nothing or both uniqueness attempts collide;
// the caller falls back to generateUsername.
func (s *Service) deriveUsername(ctx context.Context, displayName string) (string, error) {
	base := normalizeDisplayName(displayName)
	if base == "" {
		return "", nil
	}

	_, err := s.dir.FindByUsername(ctx, base)
	if errors.Is(err, ErrNotFound) {
		return base, nil
	}
	if err != nil {
		return "", fmt.Errorf("username lookup failed: %w", err)
	}

	// One retry with a random suffix, truncating the base to keep the
	// result inside the length limit.
	suffix, err := randomHex(2)
	if err != nil {
		return "", err
	}

	suffix = "_" + suffix
	if len(base)+len(suffix) > maxUsernameLen {
		base = base[:maxUsernameLen-len(suffix)]
	}

	candidate := base + suffix

	_, err = s.dir.FindByUsername(ctx, candidate)
	if errors.Is(err, ErrNotFound) {
		return candidate, nil
	}
	if err != nil {
		return "", fmt.Errorf("username lookup failed: %w", err)
	}

	return "", nil
}

// normalizeDisplayName collapses runs of disallowed characters into a
// single underscore, trims leading/trailing underscores and truncates
// to the username length limit.
func normalizeDisplayName(name string) string {
	name = disallowedRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
		name = strings.TrimRight(name, "_")
	}

	if len(name) < 3 {
		return ""
	}

	return name
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
