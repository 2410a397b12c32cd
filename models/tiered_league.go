package models

import "time"

// TieredLeague holds the tier configuration bound to one parent competition.
// Tier 1 is the top tier; TierNames[0] is its display name.
type TieredLeague struct {
	ID                  int       `json:"id" db:"id"`
	LeagueID            int       `json:"league_id" db:"league_id"`
	ParentCompetitionID int       `json:"parent_competition_id" db:"parent_competition_id"`
	Name                string    `json:"name" db:"name"`
	NumberOfTiers       int       `json:"number_of_tiers" db:"number_of_tiers"`
	DriversPerTier      int       `json:"drivers_per_tier" db:"drivers_per_tier"`
	RacesBeforeShuffle  int       `json:"races_before_shuffle" db:"races_before_shuffle"`
	PromotionSpots      int       `json:"promotion_spots" db:"promotion_spots"`
	RelegationSpots     int       `json:"relegation_spots" db:"relegation_spots"`
	TierNames           []string  `json:"tier_names" db:"tier_names"`
	LastShuffleRace     *int      `json:"last_shuffle_race,omitempty" db:"last_shuffle_race"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// TierName returns the configured name of a tier, or "" when out of range.
func (l *TieredLeague) TierName(tierNumber int) string {
	if tierNumber < 1 || tierNumber > len(l.TierNames) {
		return ""
	}
	return l.TierNames[tierNumber-1]
}

// HasTier reports whether tierNumber is within 1..NumberOfTiers.
func (l *TieredLeague) HasTier(tierNumber int) bool {
	return tierNumber >= 1 && tierNumber <= l.NumberOfTiers
}

type TierName struct {
	TierNumber int    `json:"tier_number"`
	Name       string `json:"name"`
}
