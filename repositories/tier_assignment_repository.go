package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
)

var (
	ErrTierAssignmentNotFound = errors.New("tier assignment not found")
	ErrTierAssignmentConflict = errors.New("driver already has a tier assignment in this tiered league")
	ErrTierAssignmentInvalid  = errors.New("tier assignment references an unknown tiered league")
)

type TierAssignmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, a *models.TierAssignment) error
	// Upsert writes the single (league, driver) row, replacing tier and window.
	Upsert(ctx context.Context, exec SQLExecutor, a *models.TierAssignment) error
	GetByLeagueAndProfile(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) (*models.TierAssignment, error)
	ListByLeague(ctx context.Context, exec SQLExecutor, tieredLeagueID int) ([]*models.TierAssignment, error)
	ListByTier(ctx context.Context, exec SQLExecutor, tieredLeagueID, tierNumber int) ([]*models.TierAssignment, error)
	Delete(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) error
	MaxTier(ctx context.Context, exec SQLExecutor, tieredLeagueID int) (int, error)
}

type postgresTierAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresTierAssignmentRepository(db *sql.DB) TierAssignmentRepository {
	return &postgresTierAssignmentRepository{db: db}
}

const tierAssignmentColumns = `id, tiered_league_id, profile_id, tier_number, since_race_number, created_at, updated_at`

func (r *postgresTierAssignmentRepository) scanAssignment(row rowScanner) (*models.TierAssignment, error) {
	var a models.TierAssignment
	err := row.Scan(&a.ID, &a.TieredLeagueID, &a.ProfileID, &a.TierNumber, &a.SinceRaceNumber, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTierAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresTierAssignmentRepository) Create(ctx context.Context, exec SQLExecutor, a *models.TierAssignment) error {
	query := `
		INSERT INTO tier_assignments (tiered_league_id, profile_id, tier_number, since_race_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := executorOr(r.db, exec).QueryRowContext(ctx, query,
		a.TieredLeagueID, a.ProfileID, a.TierNumber, a.SinceRaceNumber,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if code, _, ok := pqCode(err); ok {
			switch code {
			case pqUniqueViolation:
				return ErrTierAssignmentConflict
			case pqForeignKeyViolation:
				return ErrTierAssignmentInvalid
			}
		}
		return fmt.Errorf("failed to create tier assignment: %w", err)
	}
	return nil
}

func (r *postgresTierAssignmentRepository) Upsert(ctx context.Context, exec SQLExecutor, a *models.TierAssignment) error {
	query := `
		INSERT INTO tier_assignments (tiered_league_id, profile_id, tier_number, since_race_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tiered_league_id, profile_id) DO UPDATE
			SET tier_number = EXCLUDED.tier_number,
			    since_race_number = EXCLUDED.since_race_number,
			    updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := executorOr(r.db, exec).QueryRowContext(ctx, query,
		a.TieredLeagueID, a.ProfileID, a.TierNumber, a.SinceRaceNumber,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if code, _, ok := pqCode(err); ok && code == pqForeignKeyViolation {
			return ErrTierAssignmentInvalid
		}
		return fmt.Errorf("failed to upsert tier assignment for profile %d: %w", a.ProfileID, err)
	}
	return nil
}

func (r *postgresTierAssignmentRepository) GetByLeagueAndProfile(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) (*models.TierAssignment, error) {
	query := `SELECT ` + tierAssignmentColumns + ` FROM tier_assignments WHERE tiered_league_id = $1 AND profile_id = $2`
	return r.scanAssignment(executorOr(r.db, exec).QueryRowContext(ctx, query, tieredLeagueID, profileID))
}

func (r *postgresTierAssignmentRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.TierAssignment, error) {
	rows, err := executorOr(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.TierAssignment, 0)
	for rows.Next() {
		a, err := r.scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier assignment rows: %w", err)
	}
	return assignments, nil
}

func (r *postgresTierAssignmentRepository) ListByLeague(ctx context.Context, exec SQLExecutor, tieredLeagueID int) ([]*models.TierAssignment, error) {
	query := `SELECT ` + tierAssignmentColumns + ` FROM tier_assignments
		WHERE tiered_league_id = $1 ORDER BY tier_number ASC, profile_id ASC`
	return r.list(ctx, exec, query, tieredLeagueID)
}

func (r *postgresTierAssignmentRepository) ListByTier(ctx context.Context, exec SQLExecutor, tieredLeagueID, tierNumber int) ([]*models.TierAssignment, error) {
	query := `SELECT ` + tierAssignmentColumns + ` FROM tier_assignments
		WHERE tiered_league_id = $1 AND tier_number = $2 ORDER BY profile_id ASC`
	return r.list(ctx, exec, query, tieredLeagueID, tierNumber)
}

func (r *postgresTierAssignmentRepository) Delete(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) error {
	query := `DELETE FROM tier_assignments WHERE tiered_league_id = $1 AND profile_id = $2`
	result, err := executorOr(r.db, exec).ExecContext(ctx, query, tieredLeagueID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete tier assignment: %w", err)
	}
	return checkAffectedRows(result, ErrTierAssignmentNotFound)
}

func (r *postgresTierAssignmentRepository) MaxTier(ctx context.Context, exec SQLExecutor, tieredLeagueID int) (int, error) {
	var maxTier int
	query := `SELECT COALESCE(MAX(tier_number), 0) FROM tier_assignments WHERE tiered_league_id = $1`
	if err := executorOr(r.db, exec).QueryRowContext(ctx, query, tieredLeagueID).Scan(&maxTier); err != nil {
		return 0, fmt.Errorf("failed to read highest assigned tier: %w", err)
	}
	return maxTier, nil
}
