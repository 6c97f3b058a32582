package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"myfuture/api/internal/auth"
	"myfuture/api/internal/model"

	"gorm.io/gorm"
)

// UserDirectory implements auth.Directory on gorm.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.findOne(ctx, "email = ?", email)
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return d.findOne(ctx, "username = ?", username)
}

func (d *UserDirectory) FindByVerificationHash(ctx context.Context, hash string) (*model.User, error) {
	return d.findOne(ctx, "email_verification_token_hash = ?", hash)
}

func (d *UserDirectory) FindByResetHash(ctx context.Context, hash string) (*model.User, error) {
	return d.findOne(ctx, "password_reset_token_hash = ?", hash)
}

func (d *UserDirectory) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User

	err := d.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (d *UserDirectory) Insert(ctx context.Context, user *model.User) error {
	err := d.db.WithContext(ctx).Create(user).Error
	if err != nil {
		return translateDuplicate(err)
	}

	return nil
}

// Update writes every column of the row, including ones cleared to
// NULL. Select("*") matters here: the token flows clear hash columns by
// setting them nil and gorm would otherwise skip zero values.
func (d *UserDirectory) Update(ctx context.Context, user *model.User) error {
	err := d.db.WithContext(ctx).
		Model(user).
		Select("*").
		Omit("id", "created_at").
		Updates(user).
		Error
	if err != nil {
		return translateDuplicate(err)
	}

	return nil
}

// translateDuplicate maps a unique-constraint violation to the same
// domain error the pre-insert checks produce, so two registrations
// racing on one email or username can't both succeed. The violated
// column is recovered from the constraint name in the driver message.
func translateDuplicate(err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "email_verification") || strings.Contains(msg, "password_reset"):
		// A token hash collision is not a user-facing condition
		return fmt.Errorf("token hash collision: %w", err)
	case strings.Contains(msg, "username"):
		return auth.ErrUsernameTaken
	case strings.Contains(msg, "email"):
		return auth.ErrEmailTaken
	default:
		return err
	}
}
