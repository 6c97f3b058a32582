package auth

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"myfuture/api/internal/model"
	"myfuture/api/pkg/security"
	"myfuture/api/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

// fakeDirectory keeps users in memory and enforces the same uniqueness
// rules a real store enforces with unique indexes.
type fakeDirectory struct {
	users   map[string]*model.User
	updates int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]*model.User{}}
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}

func (f *fakeDirectory) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) FindByVerificationHash(_ context.Context, hash string) (*model.User, error) {
	for _, u := range f.users {
		if u.EmailVerificationTokenHash != nil && *u.EmailVerificationTokenHash == hash {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) FindByResetHash(_ context.Context, hash string) (*model.User, error) {
	for _, u := range f.users {
		if u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == hash {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) Insert(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
		if u.Username != nil && user.Username != nil && *u.Username == *user.Username {
			return ErrUsernameTaken
		}
	}

	f.users[user.ID] = clone(user)
	return nil
}

func (f *fakeDirectory) Update(_ context.Context, user *model.User) error {
	f.updates++
	f.users[user.ID] = clone(user)
	return nil
}

// stored returns the persisted row, bypassing the clone in the finders.
func (f *fakeDirectory) stored(t *testing.T, id string) *model.User {
	t.Helper()

	u, ok := f.users[id]
	require.True(t, ok, "user %s not stored", id)
	return u
}

type fakeGoogle struct {
	claims *GoogleClaims
	err    error
}

func (f *fakeGoogle) Verify(context.Context, string) (*GoogleClaims, error) {
	return f.claims, f.err
}

// ---- harness ----

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		JWTSecret:           []byte("jwt-secret"),
		AccessTokenValidity: 30 * time.Minute,

		VerificationSecret: []byte("verification-secret"),
		ResetSecret:        []byte("reset-secret"),

		VerificationTokenValidity: 24 * time.Hour,
		ResetTokenValidity:        30 * time.Minute,
		ResetRequestCooldown:      60 * time.Second,

		BcryptCost: bcrypt.MinCost,
	}
}

// newTestService returns a service on a fake directory with a
// settable clock starting at testStart.
func newTestService(google GoogleVerifier) (*Service, *fakeDirectory, *time.Time) {
	dir := newFakeDirectory()
	svc := NewService(dir, google, testConfig())

	now := testStart
	svc.now = func() time.Time { return now }

	return svc, dir, &now
}

const testPassword = "Abc12345!"

func mustRegister(t *testing.T, svc *Service, email string) (*model.User, string) {
	t.Helper()

	user, token, err := svc.Register(context.Background(), email, testPassword, "")
	require.NoError(t, err)
	return user, token
}

// ---- registration ----

func TestRegister_OK(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, rawToken, err := svc.Register(ctx, "a@example.com", testPassword, "")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, model.ProviderPassword, user.AuthProvider)
	assert.False(t, user.Verified)
	assert.Nil(t, user.VerifiedAt)

	require.NotNil(t, user.Username)
	assert.Regexp(t, regexp.MustCompile(`^user_[0-9a-f]{6}$`), *user.Username)

	require.NotNil(t, user.PasswordHash)
	assert.NotContains(t, *user.PasswordHash, testPassword)

	require.NotEmpty(t, rawToken)
	require.NotNil(t, user.EmailVerificationTokenHash)
	assert.Equal(t,
		security.HashLookupToken(rawToken, testConfig().VerificationSecret),
		*user.EmailVerificationTokenHash)

	require.NotNil(t, user.EmailVerificationExpiresAt)
	assert.Equal(t, testStart.Add(24*time.Hour), *user.EmailVerificationExpiresAt)

	stored := dir.stored(t, user.ID)
	assert.Equal(t, "a@example.com", stored.Email)
}

func TestRegister_EmailTakenNoMutation(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	mustRegister(t, svc, "a@example.com")
	require.Len(t, dir.users, 1)

	_, _, err := svc.Register(ctx, "a@example.com", testPassword, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, dir.users, 1)
}

func TestRegister_EmailNormalized(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	user, _ := mustRegister(t, svc, "  A@Example.COM ")
	assert.Equal(t, "a@example.com", user.Email)

	// Same email with different casing counts as taken
	_, _, err := svc.Register(ctx, "a@EXAMPLE.com", testPassword, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_PolicyViolation(t *testing.T) {
	svc, dir, _ := newTestService(nil)

	_, _, err := svc.Register(context.Background(), "a@example.com", "weak", "")
	require.Error(t, err)
	assert.True(t, validators.IsPolicyViolation(err))
	assert.Empty(t, dir.users)
}

func TestRegister_Usernames(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "a@example.com", testPassword, "Jane_Doe99")
	require.NoError(t, err)
	require.NotNil(t, user.Username)
	assert.Equal(t, "Jane_Doe99", *user.Username)

	_, _, err = svc.Register(ctx, "b@example.com", testPassword, "Jane_Doe99")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	for _, bad := range []string{"ab", "has space", "dash-ed", strings.Repeat("x", 31)} {
		_, _, err = svc.Register(ctx, "c@example.com", testPassword, bad)
		assert.ErrorIs(t, err, ErrUsernameInvalid, "username %q", bad)
	}
}

// ---- login ----

func TestLogin_OK(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	registered, _ := mustRegister(t, svc, "a@example.com")

	user, err := svc.Login(ctx, "a@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// Unverified accounts still log in; gating is the caller's call
	assert.False(t, user.Verified)
}

func TestLogin_GenericFailure(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	mustRegister(t, svc, "a@example.com")

	username := "google_user"
	require.NoError(t, dir.Insert(ctx, &model.User{
		ID:           "g1",
		Username:     &username,
		Email:        "g@example.com",
		AuthProvider: model.ProviderGoogle,
		Verified:     true,
	}))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", testPassword},
		{"wrong password", "a@example.com", "Wrong1234!"},
		{"account without password credential", "g@example.com", testPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestIssueAccessToken(t *testing.T) {
	svc, _, _ := newTestService(nil)

	user, _ := mustRegister(t, svc, "a@example.com")

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	claims, err := security.ParseAccessToken(token, testConfig().JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, model.ProviderPassword, claims.Provider)
}

// ---- email verification ----

func TestVerifyEmail_SingleUse(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, rawToken := mustRegister(t, svc, "a@example.com")

	require.NoError(t, svc.VerifyEmail(ctx, rawToken))

	stored := dir.stored(t, user.ID)
	assert.True(t, stored.Verified)
	require.NotNil(t, stored.VerifiedAt)
	assert.Equal(t, testStart, *stored.VerifiedAt)
	assert.Nil(t, stored.EmailVerificationTokenHash)
	assert.Nil(t, stored.EmailVerificationExpiresAt)

	// Replaying the same raw token must fail
	assert.ErrorIs(t, svc.VerifyEmail(ctx, rawToken), ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_Expired(t *testing.T) {
	svc, dir, now := newTestService(nil)
	ctx := context.Background()

	user, rawToken := mustRegister(t, svc, "a@example.com")

	*now = testStart.Add(24*time.Hour + time.Second)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, rawToken), ErrInvalidOrExpiredToken)
	assert.False(t, dir.stored(t, user.ID).Verified)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService(nil)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "bogus"), ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_StaleHashOnVerifiedAccount(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, rawToken := mustRegister(t, svc, "a@example.com")

	// Simulate a row where verification succeeded but the hash column
	// was never cleared. The token must still be rejected.
	stored := dir.stored(t, user.ID)
	stored.Verified = true

	assert.ErrorIs(t, svc.VerifyEmail(ctx, rawToken), ErrInvalidOrExpiredToken)
}

// ---- password reset ----

func TestRequestPasswordReset_OK(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, _ := mustRegister(t, svc, "a@example.com")

	rawToken, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, rawToken)

	stored := dir.stored(t, user.ID)
	require.NotNil(t, stored.PasswordResetTokenHash)
	assert.Equal(t,
		security.HashLookupToken(rawToken, testConfig().ResetSecret),
		*stored.PasswordResetTokenHash)

	require.NotNil(t, stored.PasswordResetExpiresAt)
	assert.Equal(t, testStart.Add(30*time.Minute), *stored.PasswordResetExpiresAt)

	require.NotNil(t, stored.PasswordResetRequestedAt)
	assert.Equal(t, testStart, *stored.PasswordResetRequestedAt)
}

func TestRequestPasswordReset_NeverSignalsExistence(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	// Unknown email
	token, err := svc.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	// Google account
	username := "google_user"
	require.NoError(t, dir.Insert(ctx, &model.User{
		ID:           "g1",
		Username:     &username,
		Email:        "g@example.com",
		AuthProvider: model.ProviderGoogle,
		Verified:     true,
	}))

	token, err = svc.RequestPasswordReset(ctx, "g@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRequestPasswordReset_Cooldown(t *testing.T) {
	svc, dir, now := newTestService(nil)
	ctx := context.Background()

	user, _ := mustRegister(t, svc, "a@example.com")

	first, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	firstHash := *dir.stored(t, user.ID).PasswordResetTokenHash

	// Second request inside the window is silently suppressed
	*now = testStart.Add(59 * time.Second)
	second, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, firstHash, *dir.stored(t, user.ID).PasswordResetTokenHash)

	// At the boundary the cooldown has elapsed
	*now = testStart.Add(60 * time.Second)
	third, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, third)
	assert.NotEqual(t, first, third)
	assert.NotEqual(t, firstHash, *dir.stored(t, user.ID).PasswordResetTokenHash)
}

func TestResetPassword_OK(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, _ := mustRegister(t, svc, "a@example.com")

	rawToken, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)

	const newPassword = "Brand-New1"
	require.NoError(t, svc.ResetPassword(ctx, rawToken, newPassword))

	stored := dir.stored(t, user.ID)
	assert.Nil(t, stored.PasswordResetTokenHash)
	assert.Nil(t, stored.PasswordResetExpiresAt)
	assert.Nil(t, stored.PasswordResetRequestedAt)

	// Reset implicitly verifies the account and clears the pending
	// verification token
	assert.True(t, stored.Verified)
	assert.Nil(t, stored.EmailVerificationTokenHash)
	assert.Nil(t, stored.EmailVerificationExpiresAt)

	_, err = svc.Login(ctx, "a@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@example.com", newPassword)
	assert.NoError(t, err)

	// Single use
	assert.ErrorIs(t, svc.ResetPassword(ctx, rawToken, "Other-Pass2"), ErrInvalidOrExpiredToken)
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, now := newTestService(nil)
	ctx := context.Background()

	mustRegister(t, svc, "a@example.com")

	rawToken, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)

	*now = testStart.Add(30*time.Minute + time.Second)

	// Hash still matches but the expiry has passed
	assert.ErrorIs(t, svc.ResetPassword(ctx, rawToken, "Brand-New1"), ErrInvalidOrExpiredToken)
}

func TestResetPassword_PolicyCheckedFirst(t *testing.T) {
	svc, _, _ := newTestService(nil)

	err := svc.ResetPassword(context.Background(), "irrelevant-token", "weak")
	require.Error(t, err)
	assert.True(t, validators.IsPolicyViolation(err))
	assert.NotErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestResetPassword_WrongProvider(t *testing.T) {
	svc, dir, _ := newTestService(nil)
	ctx := context.Background()

	user, _ := mustRegister(t, svc, "a@example.com")

	rawToken, err := svc.RequestPasswordReset(ctx, "a@example.com")
	require.NoError(t, err)

	// Account got upgraded to google while the reset token was in
	// flight; the stale hash must not validate.
	stored := dir.stored(t, user.ID)
	stored.AuthProvider = model.ProviderGoogle

	assert.ErrorIs(t, svc.ResetPassword(ctx, rawToken, "Brand-New1"), ErrInvalidOrExpiredToken)
}
