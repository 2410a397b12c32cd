package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementPromoted  MovementType = "promoted"
	MovementRelegated MovementType = "relegated"
	MovementStayed    MovementType = "stayed"
	MovementAssigned  MovementType = "assigned"
	MovementRemoved   MovementType = "removed"
)

// Notifies reports whether a movement of this type produces a driver notification.
func (t MovementType) Notifies() bool {
	switch t {
	case MovementPromoted, MovementRelegated, MovementAssigned:
		return true
	default:
		return false
	}
}

func (t MovementType) Valid() bool {
	switch t {
	case MovementPromoted, MovementRelegated, MovementStayed, MovementAssigned, MovementRemoved:
		return true
	}
	return false
}

// TierMovement is an append-only ledger entry. FromTier is nil for a first
// assignment, ToTier is nil for a removal.
type TierMovement struct {
	ID              int64        `json:"id" db:"id"`
	TieredLeagueID  int          `json:"tiered_league_id" db:"tiered_league_id"`
	ProfileID       int          `json:"profile_id" db:"profile_id"`
	FromTier        *int         `json:"from_tier" db:"from_tier"`
	ToTier          *int         `json:"to_tier" db:"to_tier"`
	MovementType    MovementType `json:"movement_type" db:"movement_type"`
	AfterRaceNumber int          `json:"after_race_number" db:"after_race_number"`
	ShuffleID       *uuid.UUID   `json:"shuffle_id,omitempty" db:"shuffle_id"`
	OperationKey    string       `json:"-" db:"operation_key"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}

// OperationScope separates ledger entries written by a shuffle from those
// written by an administrator acting on a single driver.
type OperationScope string

const (
	ScopeShuffle OperationScope = "shuffle"
	ScopeAdmin   OperationScope = "admin"
)

// MovementOperationKey is the natural dedup key of a ledger entry:
// scope, league, driver, target tier and triggering race number. A removal
// uses target tier 0.
func MovementOperationKey(scope OperationScope, tieredLeagueID, profileID int, toTier *int, afterRace int) string {
	target := 0
	if toTier != nil {
		target = *toTier
	}
	return fmt.Sprintf("%s:tl%d:p%d:t%d:r%d", scope, tieredLeagueID, profileID, target, afterRace)
}

// AdminOperationKey appends the id of the driver's previous ledger entry
// (0 for none) to the admin key. A retry of the same request collides; the
// same target at the same race after another change does not.
func AdminOperationKey(tieredLeagueID, profileID int, toTier *int, afterRace int, previousMovementID int64) string {
	return fmt.Sprintf("%s:after%d", MovementOperationKey(ScopeAdmin, tieredLeagueID, profileID, toTier, afterRace), previousMovementID)
}

// Repeats reports whether m is an admin entry of the given type and target
// written at afterRace.
func (m *TierMovement) Repeats(movementType MovementType, toTier *int, afterRace int) bool {
	if m == nil || m.ShuffleID != nil || m.MovementType != movementType || m.AfterRaceNumber != afterRace {
		return false
	}
	if (m.ToTier == nil) != (toTier == nil) {
		return false
	}
	return toTier == nil || *m.ToTier == *toTier
}
