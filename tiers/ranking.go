package tiers

import (
	"sort"

	"github.com/Dosada05/karting-league/models"
)

// Rank orders standings by points descending, ties by ascending profile id,
// and fills in 1-based positions. The input slice is not modified.
func Rank(standings []models.TierStanding) []models.TierStanding {
	ranked := make([]models.TierStanding, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].ProfileID < ranked[j].ProfileID
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}
