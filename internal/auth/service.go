package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"myfuture/api/internal/model"
	"myfuture/api/pkg/security"
	"myfuture/api/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// Config carries every secret and window the flows need. It is built
// once from the application config and injected here so the core never
// reads ambient state.
type Config struct {
	JWTSecret           []byte
	AccessTokenValidity time.Duration

	// Per-purpose HMAC secrets for token lookup hashes. The config
	// layer defaults both to JWTSecret when unset.
	VerificationSecret []byte
	ResetSecret        []byte

	VerificationTokenValidity time.Duration
	ResetTokenValidity        time.Duration
	ResetRequestCooldown      time.Duration

	BcryptCost int
}

// Service orchestrates the account flows against the Directory. The
// clock is a field so expiry and cooldown logic is testable.
type Service struct {
	dir       Directory
	google    GoogleVerifier
	passwords *security.Passwords
	cfg       Config
	now       func() time.Time
}

func NewService(dir Directory, google GoogleVerifier, cfg Config) *Service {
	return &Service{
		dir:       dir,
		google:    google,
		passwords: security.NewPasswords(cfg.BcryptCost),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified password account and returns it along
// with the raw verification token. The caller mails the token, it is
// never stored.
func (s *Service) Register(ctx context.Context, email, password, username string) (*model.User, string, error) {
	email = normalizeEmail(email)

	_, err := s.dir.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("email lookup failed: %w", err)
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, "", err
	}

	username = strings.TrimSpace(username)
	if username != "" {
		if !usernameRegexp.MatchString(username) {
			return nil, "", ErrUsernameInvalid
		}

		if _, err := s.dir.FindByUsername(ctx, username); err == nil {
			return nil, "", ErrUsernameTaken
		} else if !errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("username lookup failed: %w", err)
		}
	} else {
		username, err = s.generateUsername(ctx)
		if err != nil {
			return nil, "", err
		}
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", err
	}

	rawToken, err := security.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to mint verification token: %w", err)
	}

	userID, err := newUserID()
	if err != nil {
		return nil, "", err
	}

	tokenHash := security.HashLookupToken(rawToken, s.cfg.VerificationSecret)
	expiresAt := s.now().Add(s.cfg.VerificationTokenValidity)

	user := &model.User{
		ID:                         userID,
		Username:                   &username,
		Email:                      email,
		PasswordHash:               &hash,
		AuthProvider:               model.ProviderPassword,
		Verified:                   false,
		EmailVerificationTokenHash: &tokenHash,
		EmailVerificationExpiresAt: &expiresAt,
	}

	// The directory reports constraint violations as the same errors
	// as the pre-checks above, which closes the check-then-insert race.
	if err := s.dir.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return nil, "", err
		}

		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return user, rawToken, nil
}

// Login authenticates a password account. Missing accounts, accounts
// without a password credential and wrong passwords all fail with the
// same ErrInvalidCredentials. Gating on Verified is the caller's job.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.dir.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("email lookup failed: %w", err)
	}

	if user.PasswordHash == nil || !s.passwords.Verify(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueAccessToken mints the signed bearer token for an account.
func (s *Service) IssueAccessToken(user *model.User) (string, error) {
	return security.MakeAccessToken(user.ID, user.Email, user.AuthProvider, s.cfg.JWTSecret, s.cfg.AccessTokenValidity)
}

// VerifyEmail consumes a verification token. Single-use: a verified
// account rejects its old token even if the hash column wasn't cleared
// yet.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	tokenHash := security.HashLookupToken(rawToken, s.cfg.VerificationSecret)

	user, err := s.dir.FindByVerificationHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}

		return fmt.Errorf("token lookup failed: %w", err)
	}

	if user.Verified {
		return ErrInvalidOrExpiredToken
	}

	now := s.now()
	if user.EmailVerificationExpiresAt == nil || !user.EmailVerificationExpiresAt.UTC().After(now) {
		return ErrInvalidOrExpiredToken
	}

	user.Verified = true
	user.VerifiedAt = &now
	user.EmailVerificationTokenHash = nil
	user.EmailVerificationExpiresAt = nil

	if err := s.dir.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a reset token for a password account.
// It returns "" without error whenever no token should go out: unknown
// email, google account, or a request inside the cooldown window. The
// caller must answer neutrally in all of those cases.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.dir.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("email lookup failed: %w", err)
	}

	if user.AuthProvider != model.ProviderPassword || user.PasswordHash == nil {
		return "", nil
	}

	now := s.now()
	if user.PasswordResetRequestedAt != nil {
		if now.Sub(user.PasswordResetRequestedAt.UTC()) < s.cfg.ResetRequestCooldown {
			return "", nil
		}
	}

	rawToken, err := security.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to mint reset token: %w", err)
	}

	tokenHash := security.HashLookupToken(rawToken, s.cfg.ResetSecret)
	expiresAt := now.Add(s.cfg.ResetTokenValidity)

	user.PasswordResetTokenHash = &tokenHash
	user.PasswordResetExpiresAt = &expiresAt
	user.PasswordResetRequestedAt = &now

	if err := s.dir.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to update user: %w", err)
	}

	return rawToken, nil
}

// ResetPassword consumes a reset token and stores the new credential.
// A successful reset proves ownership of the mailbox the token was sent
// to, so an unverified account becomes verified as a side effect.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := validators.PasswordValidator(newPassword); err != nil {
		return err
	}

	tokenHash := security.HashLookupToken(rawToken, s.cfg.ResetSecret)

	user, err := s.dir.FindByResetHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}

		return fmt.Errorf("token lookup failed: %w", err)
	}

	now := s.now()
	if user.PasswordResetExpiresAt == nil || !user.PasswordResetExpiresAt.UTC().After(now) {
		return ErrInvalidOrExpiredToken
	}

	// Reset tokens only ever exist for password accounts. A stale hash
	// on an upgraded account must not validate.
	if user.AuthProvider != model.ProviderPassword {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = &hash
	user.PasswordResetTokenHash = nil
	user.PasswordResetExpiresAt = nil
	user.PasswordResetRequestedAt = nil

	if !user.Verified {
		user.Verified = true
		user.VerifiedAt = &now
		user.EmailVerificationTokenHash = nil
		user.EmailVerificationExpiresAt = nil
	}

	if err := s.dir.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUserID() (string, error) {
	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return "", fmt.Errorf("failed to generate user ID: %w", err)
	}

	return id, nil
}
