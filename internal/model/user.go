package model

import "time"

// Auth providers. A password account always carries a password hash,
// a google account never does.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	Username     *string `gorm:"uniqueIndex;size:30" json:"username"`
	Email        string  `gorm:"uniqueIndex;size:320;not null" json:"email"`
	PasswordHash *string `gorm:"size:255" json:"-"`

	AuthProvider string `gorm:"size:32;not null;default:password" json:"auth_provider"`

	Verified   bool       `gorm:"not null;default:false" json:"verified"`
	VerifiedAt *time.Time `json:"-"`

	// Lookup hashes only, raw tokens are never stored.
	EmailVerificationTokenHash *string    `gorm:"uniqueIndex;size:128" json:"-"`
	EmailVerificationExpiresAt *time.Time `json:"-"`

	PasswordResetTokenHash *string    `gorm:"uniqueIndex;size:128" json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	// The cleanup sweep leaves this alone when it clears an expired
	// token, so the request cooldown keeps working.
	PasswordResetRequestedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
