package service

import (
	"time"

	"myfuture/api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup periodically clears expired token hashes so stale
// hashes don't linger in the table. Correctness doesn't depend on the
// sweep (the flows re-check expiry on every consumption); this is
// hygiene. password_reset_requested_at is deliberately left alone, the
// cooldown needs it after the token itself is gone.
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			now := time.Now().UTC()

			err := db.
				Model(model.User{}).
				Where("email_verification_expires_at < ?", now).
				Updates(map[string]any{
					"email_verification_token_hash": nil,
					"email_verification_expires_at": nil,
				}).Error
			if err != nil {
				zap.L().Error("Failed to clear expired verification tokens", zap.Error(err))
			}

			err = db.
				Model(model.User{}).
				Where("password_reset_expires_at < ?", now).
				Updates(map[string]any{
					"password_reset_token_hash": nil,
					"password_reset_expires_at": nil,
				}).Error
			if err != nil {
				zap.L().Error("Failed to clear expired reset tokens", zap.Error(err))
			}
		}
	}()
}
