package tiers

import (
	"fmt"
	"sort"

	"github.com/Dosada05/karting-league/models"
)

// Decision is the engine's verdict for one driver in one shuffle.
type Decision struct {
	ProfileID    int                 `json:"profile_id"`
	FromTier     int                 `json:"from_tier"`
	ToTier       int                 `json:"to_tier"`
	Points       int                 `json:"points"`
	Position     int                 `json:"position"`
	MovementType models.MovementType `json:"movement_type"`
}

// Plan is the full reassignment for a league: exactly one decision per
// currently assigned driver, ordered by source tier and rank.
type Plan struct {
	Decisions []Decision `json:"decisions"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Moved returns the decisions that change a driver's tier.
func (p *Plan) Moved() []Decision {
	moved := make([]Decision, 0)
	for _, d := range p.Decisions {
		if d.MovementType != models.MovementStayed {
			moved = append(moved, d)
		}
	}
	return moved
}

// TierSizes returns the roster size of every tier after the plan is applied.
func (p *Plan) TierSizes() map[int]int {
	sizes := make(map[int]int)
	for _, d := range p.Decisions {
		sizes[d.ToTier]++
	}
	return sizes
}

// Reassign computes the next tier mapping from the current standings of every
// tier. Adjacent pairs are processed from the top down: the bottom
// RelegationSpots of tier k drop to k+1 and the top PromotionSpots of k+1
// rise to k. Spot counts are clamped to what the rosters can supply; an
// empty lower tier blocks the exchange for that pair. Clamps are reported
// as warnings, never as errors.
func Reassign(cfg Config, standings map[int][]models.TierStanding) (*Plan, error) {
	if cfg.NumberOfTiers < 1 {
		return nil, fmt.Errorf("%w: number_of_tiers must be at least 1, got %d", ErrInvalidConfig, cfg.NumberOfTiers)
	}
	if len(cfg.TierNames) != cfg.NumberOfTiers {
		return nil, fmt.Errorf("%w: tier_names has %d entries, number_of_tiers is %d", ErrInvalidConfig, len(cfg.TierNames), cfg.NumberOfTiers)
	}
	if cfg.PromotionSpots < 0 || cfg.RelegationSpots < 0 {
		return nil, fmt.Errorf("%w: promotion and relegation spots must not be negative", ErrInvalidConfig)
	}

	tierNumbers := make([]int, 0, len(standings))
	for tier := range standings {
		tierNumbers = append(tierNumbers, tier)
	}
	sort.Ints(tierNumbers)
	for _, tier := range tierNumbers {
		if len(standings[tier]) > 0 && (tier < 1 || tier > cfg.NumberOfTiers) {
			return nil, fmt.Errorf("%w: %d drivers assigned to tier %d outside 1..%d", ErrInvalidConfig, len(standings[tier]), tier, cfg.NumberOfTiers)
		}
	}

	ranked := make([][]models.TierStanding, cfg.NumberOfTiers+1)
	for tier := 1; tier <= cfg.NumberOfTiers; tier++ {
		ranked[tier] = Rank(standings[tier])
	}

	plan := &Plan{}
	target := make(map[int]int)
	promotedOut := make([]int, cfg.NumberOfTiers+2)
	relegatedIn := make([]int, cfg.NumberOfTiers+2)

	for k := 1; k < cfg.NumberOfTiers; k++ {
		upper, lower := ranked[k], ranked[k+1]

		if len(lower) == 0 {
			if cfg.RelegationSpots > 0 && len(upper) > promotedOut[k] {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf(
					"tier %d is empty: relegation from tier %d clamped to 0", k+1, k))
			}
			continue
		}

		promote := minInt(cfg.PromotionSpots, len(lower))
		if promote < cfg.PromotionSpots {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"tier %d has only %d drivers: promotion into tier %d clamped from %d to %d", k+1, len(lower), k, cfg.PromotionSpots, promote))
		}

		// Tier k must keep at least one driver once arrivals from both
		// neighbours are counted.
		available := len(upper) - promotedOut[k]
		maxRelegate := available
		if len(upper) > 0 {
			maxRelegate = minInt(maxRelegate, available+relegatedIn[k]+promote-1)
		}
		relegate := minInt(cfg.RelegationSpots, maxRelegate)
		if relegate < 0 {
			relegate = 0
		}
		if relegate < cfg.RelegationSpots && len(upper) > 0 {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"tier %d would be emptied by relegation: clamped from %d to %d", k, cfg.RelegationSpots, relegate))
		}

		for i := len(upper) - relegate; i < len(upper); i++ {
			target[upper[i].ProfileID] = k + 1
		}
		for i := 0; i < promote; i++ {
			target[lower[i].ProfileID] = k
		}
		promotedOut[k+1] = promote
		relegatedIn[k+1] = relegate
	}

	for tier := 1; tier <= cfg.NumberOfTiers; tier++ {
		for _, s := range ranked[tier] {
			d := Decision{
				ProfileID:    s.ProfileID,
				FromTier:     tier,
				ToTier:       tier,
				Points:       s.Points,
				Position:     s.Position,
				MovementType: models.MovementStayed,
			}
			if to, ok := target[s.ProfileID]; ok {
				d.ToTier = to
				d.MovementType = ClassifyMove(tier, to)
			}
			plan.Decisions = append(plan.Decisions, d)
		}
	}
	return plan, nil
}

// ClassifyMove names a tier change: a numerically lower target is a promotion.
func ClassifyMove(fromTier, toTier int) models.MovementType {
	switch {
	case toTier < fromTier:
		return models.MovementPromoted
	case toTier > fromTier:
		return models.MovementRelegated
	default:
		return models.MovementStayed
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
