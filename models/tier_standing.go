package models

// TierStanding is computed on demand and never persisted.
type TierStanding struct {
	ProfileID  int `json:"profile_id"`
	TierNumber int `json:"tier_number"`
	Points     int `json:"points"`
	Position   int `json:"position"`
}

type TierStandings struct {
	TierNumber int            `json:"tier_number"`
	TierName   string         `json:"tier_name"`
	Standings  []TierStanding `json:"standings"`
}
