package models

import "time"

// TierAssignment is the current tier membership of one driver in a tiered league.
// There is at most one row per (TieredLeagueID, ProfileID).
type TierAssignment struct {
	ID              int       `json:"id" db:"id"`
	TieredLeagueID  int       `json:"tiered_league_id" db:"tiered_league_id"`
	ProfileID       int       `json:"profile_id" db:"profile_id"`
	TierNumber      int       `json:"tier_number" db:"tier_number"`
	SinceRaceNumber int       `json:"since_race_number" db:"since_race_number"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	TierName string `json:"tier_name,omitempty" db:"-"`
}
