package tiers

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for tier configurations the engine cannot run.
var ErrInvalidConfig = errors.New("invalid tier configuration")

// Config is the subset of a tiered league the engine needs.
type Config struct {
	NumberOfTiers      int
	TierNames          []string
	DriversPerTier     int
	RacesBeforeShuffle int
	PromotionSpots     int
	RelegationSpots    int
}

// Validate checks the structural rules of a tier configuration.
func (c Config) Validate() error {
	if c.NumberOfTiers < 1 {
		return fmt.Errorf("%w: number_of_tiers must be at least 1, got %d", ErrInvalidConfig, c.NumberOfTiers)
	}
	if len(c.TierNames) != c.NumberOfTiers {
		return fmt.Errorf("%w: tier_names has %d entries, number_of_tiers is %d", ErrInvalidConfig, len(c.TierNames), c.NumberOfTiers)
	}
	for i, name := range c.TierNames {
		if name == "" {
			return fmt.Errorf("%w: tier %d has an empty name", ErrInvalidConfig, i+1)
		}
	}
	if c.DriversPerTier < 1 {
		return fmt.Errorf("%w: drivers_per_tier must be at least 1, got %d", ErrInvalidConfig, c.DriversPerTier)
	}
	if c.RacesBeforeShuffle < 1 {
		return fmt.Errorf("%w: races_before_shuffle must be at least 1, got %d", ErrInvalidConfig, c.RacesBeforeShuffle)
	}
	if c.PromotionSpots < 0 {
		return fmt.Errorf("%w: promotion_spots must not be negative, got %d", ErrInvalidConfig, c.PromotionSpots)
	}
	if c.RelegationSpots < 0 {
		return fmt.Errorf("%w: relegation_spots must not be negative, got %d", ErrInvalidConfig, c.RelegationSpots)
	}
	return nil
}
