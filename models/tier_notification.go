package models

import "time"

// TierMovementNotification is the driver-facing record derived from a
// TierMovement. IsRead is the only mutable field.
type TierMovementNotification struct {
	ID         int64      `json:"id" db:"id"`
	ProfileID  int        `json:"profile_id" db:"profile_id"`
	MovementID int64      `json:"movement_id" db:"movement_id"`
	IsRead     bool       `json:"is_read" db:"is_read"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty" db:"read_at"`

	Movement *TierMovement `json:"movement,omitempty" db:"-"`
}
