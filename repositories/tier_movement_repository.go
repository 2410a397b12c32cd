package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/karting-league/models"
	"github.com/google/uuid"
)

var (
	// ErrTierMovementDuplicate means the operation key is already in the ledger.
	ErrTierMovementDuplicate = errors.New("tier movement already recorded for this operation")
	ErrTierMovementInvalid   = errors.New("tier movement references an unknown tiered league")
)

type ListMovementsFilter struct {
	ProfileID *int
	ShuffleID *uuid.UUID
	Limit     int
	Offset    int
}

// TierMovementRepository is append-only: there is no update or delete.
type TierMovementRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, m *models.TierMovement) error
	// LatestForProfile returns nil without error when the driver has no
	// ledger entries in the league.
	LatestForProfile(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) (*models.TierMovement, error)
	ListByLeague(ctx context.Context, tieredLeagueID int, filter ListMovementsFilter) ([]*models.TierMovement, error)
}

type postgresTierMovementRepository struct {
	db *sql.DB
}

func NewPostgresTierMovementRepository(db *sql.DB) TierMovementRepository {
	return &postgresTierMovementRepository{db: db}
}

func (r *postgresTierMovementRepository) Insert(ctx context.Context, exec SQLExecutor, m *models.TierMovement) error {
	query := `
		INSERT INTO tier_movements
			(tiered_league_id, profile_id, from_tier, to_tier, movement_type, after_race_number, shuffle_id, operation_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (operation_key) DO NOTHING
		RETURNING id, created_at`

	shuffleID := uuid.NullUUID{}
	if m.ShuffleID != nil {
		shuffleID = uuid.NullUUID{UUID: *m.ShuffleID, Valid: true}
	}
	err := executorOr(r.db, exec).QueryRowContext(ctx, query,
		m.TieredLeagueID, m.ProfileID, m.FromTier, m.ToTier, m.MovementType,
		m.AfterRaceNumber, shuffleID, m.OperationKey,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTierMovementDuplicate
		}
		if code, _, ok := pqCode(err); ok && code == pqForeignKeyViolation {
			return ErrTierMovementInvalid
		}
		return fmt.Errorf("failed to insert tier movement for profile %d: %w", m.ProfileID, err)
	}
	return nil
}

func (r *postgresTierMovementRepository) LatestForProfile(ctx context.Context, exec SQLExecutor, tieredLeagueID, profileID int) (*models.TierMovement, error) {
	query := `
		SELECT id, tiered_league_id, profile_id, from_tier, to_tier, movement_type,
		       after_race_number, shuffle_id, operation_key, created_at
		FROM tier_movements
		WHERE tiered_league_id = $1 AND profile_id = $2
		ORDER BY id DESC
		LIMIT 1`

	m, err := scanMovement(executorOr(r.db, exec).QueryRowContext(ctx, query, tieredLeagueID, profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest tier movement for profile %d: %w", profileID, err)
	}
	return m, nil
}

func (r *postgresTierMovementRepository) ListByLeague(ctx context.Context, tieredLeagueID int, filter ListMovementsFilter) ([]*models.TierMovement, error) {
	var queryBuilder strings.Builder
	args := []interface{}{tieredLeagueID}
	argCounter := 2

	queryBuilder.WriteString(`
		SELECT id, tiered_league_id, profile_id, from_tier, to_tier, movement_type,
		       after_race_number, shuffle_id, operation_key, created_at
		FROM tier_movements
		WHERE tiered_league_id = $1`)

	if filter.ProfileID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND profile_id = $%d", argCounter))
		args = append(args, *filter.ProfileID)
		argCounter++
	}
	if filter.ShuffleID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND shuffle_id = $%d", argCounter))
		args = append(args, *filter.ShuffleID)
		argCounter++
	}
	queryBuilder.WriteString(" ORDER BY id ASC")
	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filter.Limit)
		argCounter++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier movements: %w", err)
	}
	defer rows.Close()

	movements := make([]*models.TierMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier movement rows: %w", err)
	}
	return movements, nil
}

func scanMovement(row rowScanner) (*models.TierMovement, error) {
	var m models.TierMovement
	var fromTier, toTier sql.NullInt64
	var shuffleID uuid.NullUUID
	err := row.Scan(
		&m.ID, &m.TieredLeagueID, &m.ProfileID, &fromTier, &toTier, &m.MovementType,
		&m.AfterRaceNumber, &shuffleID, &m.OperationKey, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.FromTier = nullIntPtr(fromTier)
	m.ToTier = nullIntPtr(toTier)
	if shuffleID.Valid {
		id := shuffleID.UUID
		m.ShuffleID = &id
	}
	return &m, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
