package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
)

// movementLedger writes a ledger entry and, for notifying movement types,
// the matching notification. Both happen on the caller's transaction.
type movementLedger struct {
	movementRepo     repositories.TierMovementRepository
	notificationRepo repositories.TierNotificationRepository
}

// record returns ErrTierMovementDuplicate unchanged so callers can decide
// whether a replay is benign.
func (l *movementLedger) record(ctx context.Context, exec repositories.SQLExecutor, m *models.TierMovement) (*models.TierMovementNotification, error) {
	if err := l.movementRepo.Insert(ctx, exec, m); err != nil {
		if errors.Is(err, repositories.ErrTierMovementDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record %s movement for profile %d: %w", m.MovementType, m.ProfileID, translateRepoError(err))
	}
	if !m.MovementType.Notifies() {
		return nil, nil
	}

	n := &models.TierMovementNotification{
		ProfileID:  m.ProfileID,
		MovementID: m.ID,
		Movement:   m,
	}
	if err := l.notificationRepo.Create(ctx, exec, n); err != nil {
		return nil, fmt.Errorf("failed to create notification for movement %d: %w", m.ID, err)
	}
	return n, nil
}

// latest returns the driver's newest ledger entry, or nil when there is none.
func (l *movementLedger) latest(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID, profileID int) (*models.TierMovement, error) {
	m, err := l.movementRepo.LatestForProfile(ctx, exec, tieredLeagueID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ledger for profile %d: %w", profileID, err)
	}
	return m, nil
}

func movementID(m *models.TierMovement) int64 {
	if m == nil {
		return 0
	}
	return m.ID
}

func intPtr(v int) *int { return &v }

// applyFailure marks an infrastructure failure inside a write path as
// transient. Domain errors pass through untouched.
func applyFailure(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrInvalidConfiguration, ErrPreconditionFailed, ErrTransient, ErrValidationFailed, ErrForbiddenOperation} {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrShuffleApplyFailed, err)
}
