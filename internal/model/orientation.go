package model

import "time"

// Orientation is user-scoped data. Always query with a user_id filter.
type Orientation struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"user_id"`
	Level       string    `gorm:"size:32;not null" json:"level"`
	InputMethod string    `gorm:"size:32;not null" json:"input_method"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}
