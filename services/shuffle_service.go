package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/tiers"
	"github.com/google/uuid"
)

// ShuffleOutcome describes one evaluation of a tiered league. Applied is
// false when the league was not due; Reason then says why.
type ShuffleOutcome struct {
	TieredLeagueID  int                                `json:"tiered_league_id"`
	Applied         bool                               `json:"applied"`
	Reason          string                             `json:"reason,omitempty"`
	AfterRaceNumber int                                `json:"after_race_number"`
	ShuffleID       *uuid.UUID                         `json:"shuffle_id,omitempty"`
	Due             tiers.DueReport                    `json:"due"`
	Decisions       []tiers.Decision                   `json:"decisions,omitempty"`
	Movements       []*models.TierMovement             `json:"movements,omitempty"`
	Notifications   []*models.TierMovementNotification `json:"-"`
	Warnings        []string                           `json:"warnings,omitempty"`
}

// ShufflePreview is a dry run: the plan a shuffle would apply right now.
type ShufflePreview struct {
	TieredLeagueID int              `json:"tiered_league_id"`
	Due            tiers.DueReport  `json:"due"`
	Decisions      []tiers.Decision `json:"decisions"`
	Warnings       []string         `json:"warnings,omitempty"`
}

type ShuffleOptions struct {
	// Force applies a shuffle even when no tier has reached its race count.
	// A league is still never shuffled twice at the same race count.
	Force bool
}

const (
	reasonNotDue         = "no tier has completed its race window"
	reasonAlreadyApplied = "a shuffle was already applied at this race count"
	reasonNoAssignments  = "no drivers are assigned"
)

type ShuffleService interface {
	Evaluate(ctx context.Context, tieredLeagueID int, opts ShuffleOptions) (*ShuffleOutcome, error)
	Preview(ctx context.Context, tieredLeagueID int) (*ShufflePreview, error)
	// HandleRaceCompleted evaluates every tiered league bound to the
	// competition. Leagues that fail are logged and skipped.
	HandleRaceCompleted(ctx context.Context, competitionID int) ([]*ShuffleOutcome, error)
	ListMovements(ctx context.Context, tieredLeagueID int, filter repositories.ListMovementsFilter) ([]*models.TierMovement, error)
}

type shuffleService struct {
	leagueRepo     repositories.TieredLeagueRepository
	assignmentRepo repositories.TierAssignmentRepository
	movementRepo   repositories.TierMovementRepository
	ledger         *movementLedger
	standings      *standingsService
	results        RaceResultsProvider
	tx             repositories.TxRunner
	locker         *tiers.LeagueLocker
	sink           NotificationSink
	archiver       ReportArchiver
	logger         *slog.Logger
}

type ShuffleServiceDeps struct {
	LeagueRepo       repositories.TieredLeagueRepository
	AssignmentRepo   repositories.TierAssignmentRepository
	MovementRepo     repositories.TierMovementRepository
	NotificationRepo repositories.TierNotificationRepository
	Results          RaceResultsProvider
	Tx               repositories.TxRunner
	Locker           *tiers.LeagueLocker
	// Sink and Archiver are optional.
	Sink        NotificationSink
	Archiver    ReportArchiver
	Concurrency int
	Logger      *slog.Logger
}

func NewShuffleService(deps ShuffleServiceDeps) ShuffleService {
	return &shuffleService{
		leagueRepo:     deps.LeagueRepo,
		assignmentRepo: deps.AssignmentRepo,
		movementRepo:   deps.MovementRepo,
		ledger:         &movementLedger{movementRepo: deps.MovementRepo, notificationRepo: deps.NotificationRepo},
		standings:      newStandingsService(deps.LeagueRepo, deps.AssignmentRepo, deps.Results, deps.Concurrency),
		results:        deps.Results,
		tx:             deps.Tx,
		locker:         deps.Locker,
		sink:           deps.Sink,
		archiver:       deps.Archiver,
		logger:         deps.Logger,
	}
}

func (s *shuffleService) Evaluate(ctx context.Context, tieredLeagueID int, opts ShuffleOptions) (*ShuffleOutcome, error) {
	release, err := s.locker.Acquire(ctx, tieredLeagueID)
	if err != nil {
		return nil, err
	}
	defer release()

	outcome, err := s.evaluateLocked(ctx, tieredLeagueID, opts)
	if errors.Is(err, ErrShuffleAlreadyApplied) {
		// Another writer got there first. Re-read the committed state once;
		// it will normally report the league as no longer due.
		s.logger.WarnContext(ctx, "shuffle raced with a concurrent writer, re-evaluating",
			slog.Int("tiered_league_id", tieredLeagueID))
		outcome, err = s.evaluateLocked(ctx, tieredLeagueID, opts)
		if errors.Is(err, ErrShuffleAlreadyApplied) {
			return &ShuffleOutcome{TieredLeagueID: tieredLeagueID, Reason: reasonAlreadyApplied}, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if outcome.Applied {
		s.afterCommit(ctx, outcome)
	}
	return outcome, nil
}

func (s *shuffleService) evaluateLocked(ctx context.Context, tieredLeagueID int, opts ShuffleOptions) (*ShuffleOutcome, error) {
	outcome := &ShuffleOutcome{TieredLeagueID: tieredLeagueID}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		league, err := s.leagueRepo.GetForUpdate(ctx, exec, tieredLeagueID)
		if err != nil {
			return translateRepoError(err)
		}
		cfg := configOf(league)
		if err := cfg.Validate(); err != nil {
			return err
		}

		completed, err := s.standings.completedRaces(ctx, league)
		if err != nil {
			return err
		}
		outcome.AfterRaceNumber = completed

		assignments, err := s.assignmentRepo.ListByLeague(ctx, exec, tieredLeagueID)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			return ErrNoAssignments
		}

		outcome.Due = tiers.EvaluateDue(league.RacesBeforeShuffle, completed, league.LastShuffleRace, derefAssignments(assignments))
		if !outcome.Due.Due {
			alreadyShuffled := league.LastShuffleRace != nil && completed <= *league.LastShuffleRace
			switch {
			case alreadyShuffled:
				outcome.Reason = reasonAlreadyApplied
				return nil
			case !opts.Force:
				outcome.Reason = reasonNotDue
				return nil
			}
		}

		byTier, err := s.standings.standingsByTier(ctx, league, assignments, completed)
		if err != nil {
			return err
		}
		plan, err := tiers.Reassign(cfg, byTier)
		if err != nil {
			return err
		}

		shuffleID := uuid.New()
		outcome.ShuffleID = &shuffleID
		outcome.Decisions = plan.Decisions
		outcome.Warnings = plan.Warnings

		for _, d := range plan.Decisions {
			assignment := &models.TierAssignment{
				TieredLeagueID:  tieredLeagueID,
				ProfileID:       d.ProfileID,
				TierNumber:      d.ToTier,
				SinceRaceNumber: completed,
			}
			if err := s.assignmentRepo.Upsert(ctx, exec, assignment); err != nil {
				return fmt.Errorf("failed to move profile %d to tier %d: %w", d.ProfileID, d.ToTier, translateRepoError(err))
			}

			movement := &models.TierMovement{
				TieredLeagueID:  tieredLeagueID,
				ProfileID:       d.ProfileID,
				FromTier:        intPtr(d.FromTier),
				ToTier:          intPtr(d.ToTier),
				MovementType:    d.MovementType,
				AfterRaceNumber: completed,
				ShuffleID:       &shuffleID,
			}
			movement.OperationKey = models.MovementOperationKey(models.ScopeShuffle, tieredLeagueID, d.ProfileID, movement.ToTier, completed)
			n, err := s.ledger.record(ctx, exec, movement)
			if errors.Is(err, repositories.ErrTierMovementDuplicate) {
				return ErrShuffleAlreadyApplied
			}
			if err != nil {
				return err
			}
			outcome.Movements = append(outcome.Movements, movement)
			if n != nil {
				outcome.Notifications = append(outcome.Notifications, n)
			}
		}

		if err := s.leagueRepo.UpdateLastShuffleRace(ctx, exec, tieredLeagueID, completed); err != nil {
			return translateRepoError(err)
		}
		outcome.Applied = true
		return nil
	})
	if err != nil {
		return nil, applyFailure(err)
	}
	return outcome, nil
}

func (s *shuffleService) afterCommit(ctx context.Context, outcome *ShuffleOutcome) {
	s.logger.InfoContext(ctx, "tier shuffle applied",
		slog.Int("tiered_league_id", outcome.TieredLeagueID),
		slog.String("shuffle_id", outcome.ShuffleID.String()),
		slog.Int("after_race_number", outcome.AfterRaceNumber),
		slog.Int("drivers", len(outcome.Decisions)),
		slog.Int("notifications", len(outcome.Notifications)))
	for _, w := range outcome.Warnings {
		s.logger.WarnContext(ctx, "tier shuffle clamped",
			slog.Int("tiered_league_id", outcome.TieredLeagueID),
			slog.String("warning", w))
	}

	if s.sink != nil && len(outcome.Notifications) > 0 {
		s.sink.Deliver(ctx, outcome.Notifications)
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveShuffle(ctx, outcome); err != nil {
			s.logger.ErrorContext(ctx, "failed to archive shuffle report",
				slog.Int("tiered_league_id", outcome.TieredLeagueID),
				slog.String("shuffle_id", outcome.ShuffleID.String()),
				slog.Any("error", err))
		}
	}
}

func (s *shuffleService) Preview(ctx context.Context, tieredLeagueID int) (*ShufflePreview, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, tieredLeagueID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	completed, err := s.standings.completedRaces(ctx, league)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByLeague(ctx, nil, tieredLeagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of tiered league %d: %w", tieredLeagueID, err)
	}
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}

	byTier, err := s.standings.standingsByTier(ctx, league, assignments, completed)
	if err != nil {
		return nil, err
	}
	plan, err := tiers.Reassign(configOf(league), byTier)
	if err != nil {
		return nil, err
	}
	return &ShufflePreview{
		TieredLeagueID: tieredLeagueID,
		Due:            tiers.EvaluateDue(league.RacesBeforeShuffle, completed, league.LastShuffleRace, derefAssignments(assignments)),
		Decisions:      plan.Decisions,
		Warnings:       plan.Warnings,
	}, nil
}

func (s *shuffleService) HandleRaceCompleted(ctx context.Context, competitionID int) ([]*ShuffleOutcome, error) {
	leagues, err := s.leagueRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiered leagues for competition %d: %w", competitionID, err)
	}

	outcomes := make([]*ShuffleOutcome, 0, len(leagues))
	for _, league := range leagues {
		outcome, err := s.Evaluate(ctx, league.ID, ShuffleOptions{})
		switch {
		case errors.Is(err, ErrNoAssignments):
			outcome = &ShuffleOutcome{TieredLeagueID: league.ID, Reason: reasonNoAssignments}
		case err != nil:
			if ctx.Err() != nil {
				return outcomes, ctx.Err()
			}
			s.logger.ErrorContext(ctx, "tier shuffle evaluation failed",
				slog.Int("tiered_league_id", league.ID),
				slog.Int("competition_id", competitionID),
				slog.Any("error", err))
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *shuffleService) ListMovements(ctx context.Context, tieredLeagueID int, filter repositories.ListMovementsFilter) ([]*models.TierMovement, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, tieredLeagueID); err != nil {
		return nil, translateRepoError(err)
	}
	movements, err := s.movementRepo.ListByLeague(ctx, tieredLeagueID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of tiered league %d: %w", tieredLeagueID, err)
	}
	if movements == nil {
		return []*models.TierMovement{}, nil
	}
	return movements, nil
}

func derefAssignments(assignments []*models.TierAssignment) []models.TierAssignment {
	out := make([]models.TierAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
