package auth

import (
	"context"
	"errors"
	"fmt"

	"myfuture/api/internal/model"
)

// GoogleClaims is a verified identity assertion. EmailVerified is nil
// when Google didn't state it either way.
type GoogleClaims struct {
	Email         string
	Subject       string
	Name          string
	EmailVerified *bool
}

// GoogleVerifier checks the signature, issuer, audience and expiry of
// a raw ID token. Any failure must wrap ErrInvalidExternalToken.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleClaims, error)
}

// LoginWithGoogle validates the ID token and links the identity to a
// local account, creating one if needed.
//
// A matching password account is upgraded in place: provider flips to
// google, the password credential is dropped and all pending token
// state is wiped, since the Google login supersedes any in-flight
// password flow. The upgrade is one-way; no flow ever re-adds a
// password credential to a google account.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*model.User, error) {
	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrInvalidExternalToken) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidExternalToken, err)
	}

	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	email := normalizeEmail(claims.Email)

	user, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.createGoogleUser(ctx, email, claims.Name)
		}

		return nil, fmt.Errorf("email lookup failed: %w", err)
	}

	changed := false

	if user.AuthProvider != model.ProviderGoogle {
		user.AuthProvider = model.ProviderGoogle
		changed = true
	}

	if user.PasswordHash != nil {
		user.PasswordHash = nil
		changed = true
	}

	if !user.Verified {
		now := s.now()
		user.Verified = true
		user.VerifiedAt = &now
		changed = true
	}

	if user.EmailVerificationTokenHash != nil || user.EmailVerificationExpiresAt != nil {
		user.EmailVerificationTokenHash = nil
		user.EmailVerificationExpiresAt = nil
		changed = true
	}

	if user.PasswordResetTokenHash != nil || user.PasswordResetExpiresAt != nil || user.PasswordResetRequestedAt != nil {
		user.PasswordResetTokenHash = nil
		user.PasswordResetExpiresAt = nil
		user.PasswordResetRequestedAt = nil
		changed = true
	}

	if user.Username == nil {
		username, err := s.pickUsername(ctx, claims.Name)
		if err != nil {
			return nil, err
		}

		user.Username = &username
		changed = true
	}

	if changed {
		if err := s.dir.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return user, nil
}

func (s *Service) createGoogleUser(ctx context.Context, email, displayName string) (*model.User, error) {
	username, err := s.pickUsername(ctx, displayName)
	if err != nil {
		return nil, err
	}

	userID, err := newUserID()
	if err != nil {
		return nil, err
	}

	now := s.now()

	user := &model.User{
		ID:           userID,
		Username:     &username,
		Email:        email,
		AuthProvider: model.ProviderGoogle,
		Verified:     true,
		VerifiedAt:   &now,
	}

	if err := s.dir.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *Service) pickUsername(ctx context.Context, displayName string) (string, error) {
	username, err := s.deriveUsername(ctx, displayName)
	if err != nil {
		return "", err
	}

	if username == "" {
		return s.generateUsername(ctx)
	}

	return username, nil
}
