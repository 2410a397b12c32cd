package services

import (
	"errors"

	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/tiers"
)

// Taxonomy roots. Every specific error below unwraps to exactly one of them,
// so callers can branch with errors.Is on the root.
var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrConflict             = errors.New("request conflicts with the current state")
	ErrInvalidConfiguration = tiers.ErrInvalidConfig
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrTransient            = errors.New("temporary failure, safe to retry")

	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrTieredLeagueNotFound = newKindError(ErrNotFound, "tiered league not found")
	ErrTierNotFound         = newKindError(ErrNotFound, "tier not found in this tiered league")
	ErrAssignmentNotFound   = newKindError(ErrNotFound, "driver is not assigned to a tier in this tiered league")
	ErrProfileNotEnrolled   = newKindError(ErrNotFound, "profile is not enrolled in the parent competition")
	ErrNotificationNotFound = newKindError(ErrNotFound, "notification not found")

	ErrTieredLeagueExists    = newKindError(ErrConflict, "a tiered league already exists for this league and competition")
	ErrAssignmentExists      = newKindError(ErrConflict, "driver already has a tier assignment in this tiered league")
	ErrMoveAlreadyRecorded   = newKindError(ErrConflict, "this driver operation is already recorded in the movement ledger")
	ErrShuffleAlreadyApplied = newKindError(ErrConflict, "shuffle already applied for this race")

	ErrNoAssignments = newKindError(ErrPreconditionFailed, "tiered league has no assigned drivers to shuffle")

	ErrShuffleApplyFailed = newKindError(ErrTransient, "failed to apply tier changes")
	ErrResultsUnavailable = newKindError(ErrTransient, "race results are unavailable")
)

// translateRepoError maps repository sentinels onto the service taxonomy.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTieredLeagueNotFound):
		return ErrTieredLeagueNotFound
	case errors.Is(err, repositories.ErrTieredLeagueConflict):
		return ErrTieredLeagueExists
	case errors.Is(err, repositories.ErrTierAssignmentNotFound):
		return ErrAssignmentNotFound
	case errors.Is(err, repositories.ErrTierAssignmentConflict):
		return ErrAssignmentExists
	case errors.Is(err, repositories.ErrTierAssignmentInvalid),
		errors.Is(err, repositories.ErrTierMovementInvalid):
		return ErrTieredLeagueNotFound
	case errors.Is(err, repositories.ErrTierNotificationNotFound):
		return ErrNotificationNotFound
	default:
		return err
	}
}
