package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/tiers"
)

type CreateTieredLeagueInput struct {
	LeagueID            int      `json:"league_id" validate:"required,gt=0"`
	ParentCompetitionID int      `json:"parent_competition_id" validate:"required,gt=0"`
	Name                string   `json:"name" validate:"required,max=255"`
	NumberOfTiers       int      `json:"number_of_tiers" validate:"required,gte=1"`
	DriversPerTier      int      `json:"drivers_per_tier" validate:"required,gte=1"`
	RacesBeforeShuffle  int      `json:"races_before_shuffle" validate:"required,gte=1"`
	PromotionSpots      int      `json:"promotion_spots" validate:"gte=0"`
	RelegationSpots     int      `json:"relegation_spots" validate:"gte=0"`
	TierNames           []string `json:"tier_names" validate:"required,min=1,dive,required,max=100"`
}

// UpdateTieredLeagueInput is a partial update; nil fields keep their value.
type UpdateTieredLeagueInput struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	NumberOfTiers      *int     `json:"number_of_tiers,omitempty" validate:"omitempty,gte=1"`
	DriversPerTier     *int     `json:"drivers_per_tier,omitempty" validate:"omitempty,gte=1"`
	RacesBeforeShuffle *int     `json:"races_before_shuffle,omitempty" validate:"omitempty,gte=1"`
	PromotionSpots     *int     `json:"promotion_spots,omitempty" validate:"omitempty,gte=0"`
	RelegationSpots    *int     `json:"relegation_spots,omitempty" validate:"omitempty,gte=0"`
	TierNames          []string `json:"tier_names,omitempty" validate:"omitempty,min=1,dive,required,max=100"`
}

type TieredLeagueService interface {
	Create(ctx context.Context, input CreateTieredLeagueInput) (*models.TieredLeague, error)
	GetByID(ctx context.Context, id int) (*models.TieredLeague, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error)
	Update(ctx context.Context, id int, input UpdateTieredLeagueInput) (*models.TieredLeague, error)
	Delete(ctx context.Context, id int) error
	TierNames(ctx context.Context, id int) ([]models.TierName, error)
	ListAssignments(ctx context.Context, id int, tierNumber *int) ([]*models.TierAssignment, error)
	// GetActiveTier returns assigned=false, not an error, when the driver has
	// no tier in an existing league.
	GetActiveTier(ctx context.Context, id, profileID int) (assignment *models.TierAssignment, assigned bool, err error)
}

type tieredLeagueService struct {
	leagueRepo     repositories.TieredLeagueRepository
	assignmentRepo repositories.TierAssignmentRepository
	tx             repositories.TxRunner
	locker         *tiers.LeagueLocker
	logger         *slog.Logger
}

func NewTieredLeagueService(
	leagueRepo repositories.TieredLeagueRepository,
	assignmentRepo repositories.TierAssignmentRepository,
	tx repositories.TxRunner,
	locker *tiers.LeagueLocker,
	logger *slog.Logger,
) TieredLeagueService {
	return &tieredLeagueService{
		leagueRepo:     leagueRepo,
		assignmentRepo: assignmentRepo,
		tx:             tx,
		locker:         locker,
		logger:         logger,
	}
}

func configOf(l *models.TieredLeague) tiers.Config {
	return tiers.Config{
		NumberOfTiers:      l.NumberOfTiers,
		TierNames:          l.TierNames,
		DriversPerTier:     l.DriversPerTier,
		RacesBeforeShuffle: l.RacesBeforeShuffle,
		PromotionSpots:     l.PromotionSpots,
		RelegationSpots:    l.RelegationSpots,
	}
}

func (s *tieredLeagueService) Create(ctx context.Context, input CreateTieredLeagueInput) (*models.TieredLeague, error) {
	league := &models.TieredLeague{
		LeagueID:            input.LeagueID,
		ParentCompetitionID: input.ParentCompetitionID,
		Name:                input.Name,
		NumberOfTiers:       input.NumberOfTiers,
		DriversPerTier:      input.DriversPerTier,
		RacesBeforeShuffle:  input.RacesBeforeShuffle,
		PromotionSpots:      input.PromotionSpots,
		RelegationSpots:     input.RelegationSpots,
		TierNames:           input.TierNames,
	}
	if err := configOf(league).Validate(); err != nil {
		return nil, err
	}

	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, fmt.Errorf("failed to create tiered league: %w", translateRepoError(err))
	}
	s.logger.InfoContext(ctx, "tiered league created",
		slog.Int("tiered_league_id", league.ID),
		slog.Int("league_id", league.LeagueID),
		slog.Int("parent_competition_id", league.ParentCompetitionID),
		slog.Int("number_of_tiers", league.NumberOfTiers))
	return league, nil
}

func (s *tieredLeagueService) GetByID(ctx context.Context, id int) (*models.TieredLeague, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return league, nil
}

func (s *tieredLeagueService) ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error) {
	leagues, err := s.leagueRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiered leagues for league %d: %w", leagueID, err)
	}
	if leagues == nil {
		return []*models.TieredLeague{}, nil
	}
	return leagues, nil
}

func (s *tieredLeagueService) Update(ctx context.Context, id int, input UpdateTieredLeagueInput) (*models.TieredLeague, error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *models.TieredLeague
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		league, err := s.leagueRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return translateRepoError(err)
		}

		if input.Name != nil {
			league.Name = *input.Name
		}
		if input.NumberOfTiers != nil {
			league.NumberOfTiers = *input.NumberOfTiers
		}
		if input.DriversPerTier != nil {
			league.DriversPerTier = *input.DriversPerTier
		}
		if input.RacesBeforeShuffle != nil {
			league.RacesBeforeShuffle = *input.RacesBeforeShuffle
		}
		if input.PromotionSpots != nil {
			league.PromotionSpots = *input.PromotionSpots
		}
		if input.RelegationSpots != nil {
			league.RelegationSpots = *input.RelegationSpots
		}
		if input.TierNames != nil {
			league.TierNames = input.TierNames
		}
		if err := configOf(league).Validate(); err != nil {
			return err
		}

		maxTier, err := s.assignmentRepo.MaxTier(ctx, exec, id)
		if err != nil {
			return err
		}
		if maxTier > league.NumberOfTiers {
			return fmt.Errorf("%w: drivers are still assigned to tier %d, number_of_tiers cannot drop to %d",
				ErrInvalidConfiguration, maxTier, league.NumberOfTiers)
		}

		if err := s.leagueRepo.Update(ctx, exec, league); err != nil {
			return translateRepoError(err)
		}
		updated = league
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tiered league updated", slog.Int("tiered_league_id", id))
	return updated, nil
}

func (s *tieredLeagueService) Delete(ctx context.Context, id int) error {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if err := s.leagueRepo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "tiered league deleted", slog.Int("tiered_league_id", id))
	return nil
}

func (s *tieredLeagueService) TierNames(ctx context.Context, id int) ([]models.TierName, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]models.TierName, 0, league.NumberOfTiers)
	for tier := 1; tier <= league.NumberOfTiers; tier++ {
		names = append(names, models.TierName{TierNumber: tier, Name: league.TierName(tier)})
	}
	return names, nil
}

func (s *tieredLeagueService) ListAssignments(ctx context.Context, id int, tierNumber *int) ([]*models.TierAssignment, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var assignments []*models.TierAssignment
	if tierNumber != nil {
		if !league.HasTier(*tierNumber) {
			return nil, ErrTierNotFound
		}
		assignments, err = s.assignmentRepo.ListByTier(ctx, nil, id, *tierNumber)
	} else {
		assignments, err = s.assignmentRepo.ListByLeague(ctx, nil, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tier assignments for tiered league %d: %w", id, err)
	}
	if assignments == nil {
		return []*models.TierAssignment{}, nil
	}
	for _, a := range assignments {
		a.TierName = league.TierName(a.TierNumber)
	}
	return assignments, nil
}

func (s *tieredLeagueService) GetActiveTier(ctx context.Context, id, profileID int) (*models.TierAssignment, bool, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	assignment, err := s.assignmentRepo.GetByLeagueAndProfile(ctx, nil, id, profileID)
	if errors.Is(err, repositories.ErrTierAssignmentNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get tier of profile %d in tiered league %d: %w", profileID, id, err)
	}
	assignment.TierName = league.TierName(assignment.TierNumber)
	return assignment, true, nil
}
