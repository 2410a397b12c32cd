package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/tiers"
	"golang.org/x/sync/errgroup"
)

const defaultStandingsConcurrency = 8

// StandingsService computes tier standings on demand. Nothing is cached:
// every call reads the current assignments and race results.
type StandingsService interface {
	TierStandings(ctx context.Context, tieredLeagueID, tierNumber int) (*models.TierStandings, error)
	AllStandings(ctx context.Context, tieredLeagueID int) ([]models.TierStandings, error)
}

type standingsService struct {
	leagueRepo     repositories.TieredLeagueRepository
	assignmentRepo repositories.TierAssignmentRepository
	results        RaceResultsProvider
	concurrency    int
}

func NewStandingsService(
	leagueRepo repositories.TieredLeagueRepository,
	assignmentRepo repositories.TierAssignmentRepository,
	results RaceResultsProvider,
	concurrency int,
) StandingsService {
	return newStandingsService(leagueRepo, assignmentRepo, results, concurrency)
}

func newStandingsService(
	leagueRepo repositories.TieredLeagueRepository,
	assignmentRepo repositories.TierAssignmentRepository,
	results RaceResultsProvider,
	concurrency int,
) *standingsService {
	if concurrency < 1 {
		concurrency = defaultStandingsConcurrency
	}
	return &standingsService{
		leagueRepo:     leagueRepo,
		assignmentRepo: assignmentRepo,
		results:        results,
		concurrency:    concurrency,
	}
}

func (s *standingsService) TierStandings(ctx context.Context, tieredLeagueID, tierNumber int) (*models.TierStandings, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, tieredLeagueID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if !league.HasTier(tierNumber) {
		return nil, ErrTierNotFound
	}

	assignments, err := s.assignmentRepo.ListByTier(ctx, nil, tieredLeagueID, tierNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier %d of tiered league %d: %w", tierNumber, tieredLeagueID, err)
	}
	completed, err := s.completedRaces(ctx, league)
	if err != nil {
		return nil, err
	}
	raw, err := s.collect(ctx, league.ParentCompetitionID, assignments, completed)
	if err != nil {
		return nil, err
	}
	return &models.TierStandings{
		TierNumber: tierNumber,
		TierName:   league.TierName(tierNumber),
		Standings:  tiers.Rank(raw),
	}, nil
}

func (s *standingsService) AllStandings(ctx context.Context, tieredLeagueID int) ([]models.TierStandings, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, tieredLeagueID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	assignments, err := s.assignmentRepo.ListByLeague(ctx, nil, tieredLeagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of tiered league %d: %w", tieredLeagueID, err)
	}
	completed, err := s.completedRaces(ctx, league)
	if err != nil {
		return nil, err
	}
	byTier, err := s.standingsByTier(ctx, league, assignments, completed)
	if err != nil {
		return nil, err
	}

	all := make([]models.TierStandings, 0, league.NumberOfTiers)
	for tier := 1; tier <= league.NumberOfTiers; tier++ {
		all = append(all, models.TierStandings{
			TierNumber: tier,
			TierName:   league.TierName(tier),
			Standings:  tiers.Rank(byTier[tier]),
		})
	}
	return all, nil
}

func (s *standingsService) completedRaces(ctx context.Context, league *models.TieredLeague) (int, error) {
	completed, err := s.results.GetCompletedRaceCount(ctx, league.ParentCompetitionID)
	if err != nil {
		return 0, fmt.Errorf("%w: completed race count for competition %d: %w",
			ErrResultsUnavailable, league.ParentCompetitionID, err)
	}
	return completed, nil
}

// standingsByTier groups unranked standings by the driver's current tier.
func (s *standingsService) standingsByTier(ctx context.Context, league *models.TieredLeague, assignments []*models.TierAssignment, completed int) (map[int][]models.TierStanding, error) {
	raw, err := s.collect(ctx, league.ParentCompetitionID, assignments, completed)
	if err != nil {
		return nil, err
	}
	byTier := make(map[int][]models.TierStanding)
	for _, st := range raw {
		byTier[st.TierNumber] = append(byTier[st.TierNumber], st)
	}
	return byTier, nil
}

// collect sums each driver's points over (since, completed] with bounded
// parallelism. The result keeps the order of assignments.
func (s *standingsService) collect(ctx context.Context, competitionID int, assignments []*models.TierAssignment, completed int) ([]models.TierStanding, error) {
	out := make([]models.TierStanding, len(assignments))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, a := range assignments {
		i, a := i, a
		g.Go(func() error {
			points, err := s.results.GetPointsForDriver(gCtx, competitionID, a.ProfileID,
				models.RaceRange{After: a.SinceRaceNumber, Through: completed})
			if err != nil {
				return fmt.Errorf("%w: points of profile %d: %w", ErrResultsUnavailable, a.ProfileID, err)
			}
			out[i] = models.TierStanding{ProfileID: a.ProfileID, TierNumber: a.TierNumber, Points: points}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
