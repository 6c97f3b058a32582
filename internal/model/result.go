package model

import "time"

// Result is user-scoped data. Always query with a user_id filter.
type Result struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"index;size:36;not null" json:"user_id"`

	// Optional linkage to the orientation that produced this result
	OrientationID *string `gorm:"index;size:36" json:"orientation_id"`

	// Payload stays a JSON string to keep the schema portable
	PayloadJSON string    `gorm:"not null" json:"payload_json"`
	CreatedAt   time.Time `json:"created_at"`
}
