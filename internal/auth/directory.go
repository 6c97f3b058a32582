package auth

import (
	"context"

	"myfuture/api/internal/model"
)

// Directory is the user record store. Implementations must enforce
// uniqueness on email, username and both token-hash columns at the
// storage layer and report violations as ErrEmailTaken/ErrUsernameTaken
// so that two racing registrations can't both win. Lookups return
// ErrNotFound when no row matches.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByVerificationHash(ctx context.Context, hash string) (*model.User, error)
	FindByResetHash(ctx context.Context, hash string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}
