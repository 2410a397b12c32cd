package tiers

import (
	"sort"

	"github.com/Dosada05/karting-league/models"
)

// TierProgress describes how far one tier is into its current cycle.
type TierProgress struct {
	TierNumber        int  `json:"tier_number"`
	Members           int  `json:"members"`
	EarliestSinceRace int  `json:"earliest_since_race"`
	RacesElapsed      int  `json:"races_elapsed"`
	Due               bool `json:"due"`
}

// DueReport is the result of a shuffle-due evaluation for a whole league.
type DueReport struct {
	Due            bool           `json:"due"`
	CompletedRaces int            `json:"completed_races"`
	Tiers          []TierProgress `json:"tiers"`
}

// EvaluateDue decides whether a league needs a reshuffle. Each tier is
// checked against its own earliest window start; the league is due as soon
// as any tier qualifies. A league never becomes due twice at the same race
// count: lastShuffleRace blocks re-triggering until a new race completes.
func EvaluateDue(racesBeforeShuffle, completedRaces int, lastShuffleRace *int, assignments []models.TierAssignment) DueReport {
	report := DueReport{CompletedRaces: completedRaces}

	byTier := make(map[int]*TierProgress)
	for _, a := range assignments {
		p, ok := byTier[a.TierNumber]
		if !ok {
			p = &TierProgress{TierNumber: a.TierNumber, EarliestSinceRace: a.SinceRaceNumber}
			byTier[a.TierNumber] = p
		}
		p.Members++
		if a.SinceRaceNumber < p.EarliestSinceRace {
			p.EarliestSinceRace = a.SinceRaceNumber
		}
	}

	blocked := lastShuffleRace != nil && completedRaces <= *lastShuffleRace
	for _, p := range byTier {
		p.RacesElapsed = completedRaces - p.EarliestSinceRace
		if p.RacesElapsed < 0 {
			p.RacesElapsed = 0
		}
		p.Due = !blocked && racesBeforeShuffle > 0 && p.RacesElapsed >= racesBeforeShuffle
		if p.Due {
			report.Due = true
		}
		report.Tiers = append(report.Tiers, *p)
	}
	sort.Slice(report.Tiers, func(i, j int) bool {
		return report.Tiers[i].TierNumber < report.Tiers[j].TierNumber
	})
	return report
}
