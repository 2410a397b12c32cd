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

type AssignDriverInput struct {
	ProfileID  int `json:"profile_id" validate:"required,gt=0"`
	TierNumber int `json:"tier_number" validate:"required,gte=1"`
}

type MoveDriverInput struct {
	TierNumber int `json:"tier_number" validate:"required,gte=1"`
}

// AssignmentResult is what an administrative tier change produced. Replayed
// is true when the request repeated an already applied operation and nothing
// was written.
type AssignmentResult struct {
	Assignment   *models.TierAssignment           `json:"assignment,omitempty"`
	Movement     *models.TierMovement             `json:"movement,omitempty"`
	Notification *models.TierMovementNotification `json:"-"`
	Replayed     bool                             `json:"replayed"`
}

// AssignmentService covers administrative changes to a single driver. They
// never touch other drivers' assignments or windows.
type AssignmentService interface {
	Assign(ctx context.Context, tieredLeagueID int, input AssignDriverInput) (*AssignmentResult, error)
	Remove(ctx context.Context, tieredLeagueID, profileID int) (*AssignmentResult, error)
	Move(ctx context.Context, tieredLeagueID, profileID int, input MoveDriverInput) (*AssignmentResult, error)
}

type assignmentService struct {
	leagueRepo     repositories.TieredLeagueRepository
	assignmentRepo repositories.TierAssignmentRepository
	ledger         *movementLedger
	results        RaceResultsProvider
	enrollment     EnrollmentProvider
	tx             repositories.TxRunner
	locker         *tiers.LeagueLocker
	sink           NotificationSink
	logger         *slog.Logger
}

type AssignmentServiceDeps struct {
	LeagueRepo       repositories.TieredLeagueRepository
	AssignmentRepo   repositories.TierAssignmentRepository
	MovementRepo     repositories.TierMovementRepository
	NotificationRepo repositories.TierNotificationRepository
	Results          RaceResultsProvider
	Enrollment       EnrollmentProvider
	Tx               repositories.TxRunner
	Locker           *tiers.LeagueLocker
	Sink             NotificationSink
	Logger           *slog.Logger
}

func NewAssignmentService(deps AssignmentServiceDeps) AssignmentService {
	return &assignmentService{
		leagueRepo:     deps.LeagueRepo,
		assignmentRepo: deps.AssignmentRepo,
		ledger:         &movementLedger{movementRepo: deps.MovementRepo, notificationRepo: deps.NotificationRepo},
		results:        deps.Results,
		enrollment:     deps.Enrollment,
		tx:             deps.Tx,
		locker:         deps.Locker,
		sink:           deps.Sink,
		logger:         deps.Logger,
	}
}

// locked runs fn under the league's writer lock and one transaction, then
// delivers the notification it produced.
func (s *assignmentService) locked(ctx context.Context, tieredLeagueID int, fn func(exec repositories.SQLExecutor, league *models.TieredLeague, completed int) (*AssignmentResult, error)) (*AssignmentResult, error) {
	release, err := s.locker.Acquire(ctx, tieredLeagueID)
	if err != nil {
		return nil, err
	}
	defer release()

	var result *AssignmentResult
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		league, err := s.leagueRepo.GetForUpdate(ctx, exec, tieredLeagueID)
		if err != nil {
			return translateRepoError(err)
		}
		completed, err := s.results.GetCompletedRaceCount(ctx, league.ParentCompetitionID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrResultsUnavailable, err)
		}
		result, err = fn(exec, league, completed)
		return err
	})
	if err != nil {
		return nil, applyFailure(err)
	}

	if s.sink != nil && result.Notification != nil {
		s.sink.Deliver(ctx, []*models.TierMovementNotification{result.Notification})
	}
	return result, nil
}

func (s *assignmentService) Assign(ctx context.Context, tieredLeagueID int, input AssignDriverInput) (*AssignmentResult, error) {
	result, err := s.locked(ctx, tieredLeagueID, func(exec repositories.SQLExecutor, league *models.TieredLeague, completed int) (*AssignmentResult, error) {
		if !league.HasTier(input.TierNumber) {
			return nil, ErrTierNotFound
		}
		enrolled, err := s.enrollment.IsEnrolled(ctx, league.ParentCompetitionID, input.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment of profile %d: %w", input.ProfileID, err)
		}
		if !enrolled {
			return nil, ErrProfileNotEnrolled
		}

		latest, err := s.ledger.latest(ctx, exec, league.ID, input.ProfileID)
		if err != nil {
			return nil, err
		}
		existing, err := s.assignmentRepo.GetByLeagueAndProfile(ctx, exec, league.ID, input.ProfileID)
		switch {
		case err == nil:
			// Only the driver's newest entry being this very assignment
			// counts as a retry.
			if existing.TierNumber == input.TierNumber && latest.Repeats(models.MovementAssigned, intPtr(input.TierNumber), completed) {
				existing.TierName = league.TierName(existing.TierNumber)
				return &AssignmentResult{Assignment: existing, Replayed: true}, nil
			}
			return nil, ErrAssignmentExists
		case !errors.Is(err, repositories.ErrTierAssignmentNotFound):
			return nil, err
		}
		key := models.AdminOperationKey(league.ID, input.ProfileID, intPtr(input.TierNumber), completed, movementID(latest))

		assignment := &models.TierAssignment{
			TieredLeagueID:  league.ID,
			ProfileID:       input.ProfileID,
			TierNumber:      input.TierNumber,
			SinceRaceNumber: completed,
		}
		if err := s.assignmentRepo.Create(ctx, exec, assignment); err != nil {
			return nil, translateRepoError(err)
		}
		movement := &models.TierMovement{
			TieredLeagueID:  league.ID,
			ProfileID:       input.ProfileID,
			ToTier:          intPtr(input.TierNumber),
			MovementType:    models.MovementAssigned,
			AfterRaceNumber: completed,
			OperationKey:    key,
		}
		n, err := s.ledger.record(ctx, exec, movement)
		if errors.Is(err, repositories.ErrTierMovementDuplicate) {
			return nil, ErrMoveAlreadyRecorded
		}
		if err != nil {
			return nil, err
		}
		assignment.TierName = league.TierName(assignment.TierNumber)
		return &AssignmentResult{Assignment: assignment, Movement: movement, Notification: n}, nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		s.logger.InfoContext(ctx, "driver assigned to tier",
			slog.Int("tiered_league_id", tieredLeagueID),
			slog.Int("profile_id", input.ProfileID),
			slog.Int("tier_number", input.TierNumber))
	}
	return result, nil
}

func (s *assignmentService) Remove(ctx context.Context, tieredLeagueID, profileID int) (*AssignmentResult, error) {
	result, err := s.locked(ctx, tieredLeagueID, func(exec repositories.SQLExecutor, league *models.TieredLeague, completed int) (*AssignmentResult, error) {
		latest, err := s.ledger.latest(ctx, exec, league.ID, profileID)
		if err != nil {
			return nil, err
		}
		existing, err := s.assignmentRepo.GetByLeagueAndProfile(ctx, exec, league.ID, profileID)
		if errors.Is(err, repositories.ErrTierAssignmentNotFound) {
			if latest.Repeats(models.MovementRemoved, nil, completed) {
				return &AssignmentResult{Replayed: true}, nil
			}
			return nil, ErrAssignmentNotFound
		}
		if err != nil {
			return nil, err
		}
		key := models.AdminOperationKey(league.ID, profileID, nil, completed, movementID(latest))

		if err := s.assignmentRepo.Delete(ctx, exec, league.ID, profileID); err != nil {
			return nil, translateRepoError(err)
		}
		movement := &models.TierMovement{
			TieredLeagueID:  league.ID,
			ProfileID:       profileID,
			FromTier:        intPtr(existing.TierNumber),
			MovementType:    models.MovementRemoved,
			AfterRaceNumber: completed,
			OperationKey:    key,
		}
		if _, err := s.ledger.record(ctx, exec, movement); err != nil {
			if errors.Is(err, repositories.ErrTierMovementDuplicate) {
				return nil, ErrMoveAlreadyRecorded
			}
			return nil, err
		}
		return &AssignmentResult{Movement: movement}, nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		s.logger.InfoContext(ctx, "driver removed from tiers",
			slog.Int("tiered_league_id", tieredLeagueID),
			slog.Int("profile_id", profileID))
	}
	return result, nil
}

// Move places one driver in another tier immediately. The driver's window
// restarts at the current race count; everyone else is left alone.
func (s *assignmentService) Move(ctx context.Context, tieredLeagueID, profileID int, input MoveDriverInput) (*AssignmentResult, error) {
	result, err := s.locked(ctx, tieredLeagueID, func(exec repositories.SQLExecutor, league *models.TieredLeague, completed int) (*AssignmentResult, error) {
		if !league.HasTier(input.TierNumber) {
			return nil, ErrTierNotFound
		}
		existing, err := s.assignmentRepo.GetByLeagueAndProfile(ctx, exec, league.ID, profileID)
		if err != nil {
			return nil, translateRepoError(err)
		}
		if existing.TierNumber == input.TierNumber {
			existing.TierName = league.TierName(existing.TierNumber)
			return &AssignmentResult{Assignment: existing, Replayed: true}, nil
		}

		latest, err := s.ledger.latest(ctx, exec, league.ID, profileID)
		if err != nil {
			return nil, err
		}
		key := models.AdminOperationKey(league.ID, profileID, intPtr(input.TierNumber), completed, movementID(latest))

		fromTier := existing.TierNumber
		existing.TierNumber = input.TierNumber
		existing.SinceRaceNumber = completed
		if err := s.assignmentRepo.Upsert(ctx, exec, existing); err != nil {
			return nil, translateRepoError(err)
		}
		movement := &models.TierMovement{
			TieredLeagueID:  league.ID,
			ProfileID:       profileID,
			FromTier:        intPtr(fromTier),
			ToTier:          intPtr(input.TierNumber),
			MovementType:    tiers.ClassifyMove(fromTier, input.TierNumber),
			AfterRaceNumber: completed,
			OperationKey:    key,
		}
		n, err := s.ledger.record(ctx, exec, movement)
		if errors.Is(err, repositories.ErrTierMovementDuplicate) {
			return nil, ErrMoveAlreadyRecorded
		}
		if err != nil {
			return nil, err
		}
		existing.TierName = league.TierName(existing.TierNumber)
		return &AssignmentResult{Assignment: existing, Movement: movement, Notification: n}, nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		s.logger.InfoContext(ctx, "driver moved between tiers",
			slog.Int("tiered_league_id", tieredLeagueID),
			slog.Int("profile_id", profileID),
			slog.Int("from_tier", *result.Movement.FromTier),
			slog.Int("to_tier", input.TierNumber))
	}
	return result, nil
}
