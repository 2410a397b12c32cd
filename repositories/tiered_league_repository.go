package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
	"github.com/lib/pq"
)

var (
	ErrTieredLeagueNotFound = errors.New("tiered league not found")
	ErrTieredLeagueConflict = errors.New("tiered league already exists for this league and competition")
)

type TieredLeagueRepository interface {
	Create(ctx context.Context, league *models.TieredLeague) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TieredLeague, error)
	// GetForUpdate locks the league row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.TieredLeague, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]*models.TieredLeague, error)
	Update(ctx context.Context, exec SQLExecutor, league *models.TieredLeague) error
	UpdateLastShuffleRace(ctx context.Context, exec SQLExecutor, id int, raceNumber int) error
	Delete(ctx context.Context, id int) error
}

type postgresTieredLeagueRepository struct {
	db *sql.DB
}

func NewPostgresTieredLeagueRepository(db *sql.DB) TieredLeagueRepository {
	return &postgresTieredLeagueRepository{db: db}
}

const tieredLeagueColumns = `
	id, league_id, parent_competition_id, name, number_of_tiers, drivers_per_tier,
	races_before_shuffle, promotion_spots, relegation_spots, tier_names,
	last_shuffle_race, created_at, updated_at`

func (r *postgresTieredLeagueRepository) scanTieredLeague(row rowScanner) (*models.TieredLeague, error) {
	var l models.TieredLeague
	var lastShuffle sql.NullInt64
	err := row.Scan(
		&l.ID, &l.LeagueID, &l.ParentCompetitionID, &l.Name, &l.NumberOfTiers, &l.DriversPerTier,
		&l.RacesBeforeShuffle, &l.PromotionSpots, &l.RelegationSpots, pq.Array(&l.TierNames),
		&lastShuffle, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTieredLeagueNotFound
		}
		return nil, err
	}
	if lastShuffle.Valid {
		v := int(lastShuffle.Int64)
		l.LastShuffleRace = &v
	}
	return &l, nil
}

func (r *postgresTieredLeagueRepository) Create(ctx context.Context, l *models.TieredLeague) error {
	query := `
		INSERT INTO tiered_leagues (
			league_id, parent_competition_id, name, number_of_tiers, drivers_per_tier,
			races_before_shuffle, promotion_spots, relegation_spots, tier_names
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		l.LeagueID, l.ParentCompetitionID, l.Name, l.NumberOfTiers, l.DriversPerTier,
		l.RacesBeforeShuffle, l.PromotionSpots, l.RelegationSpots, pq.Array(l.TierNames),
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if code, _, ok := pqCode(err); ok && code == pqUniqueViolation {
			return ErrTieredLeagueConflict
		}
		return fmt.Errorf("failed to create tiered league: %w", err)
	}
	return nil
}

func (r *postgresTieredLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TieredLeague, error) {
	query := `SELECT ` + tieredLeagueColumns + ` FROM tiered_leagues WHERE id = $1`
	return r.scanTieredLeague(executorOr(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTieredLeagueRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.TieredLeague, error) {
	query := `SELECT ` + tieredLeagueColumns + ` FROM tiered_leagues WHERE id = $1 FOR UPDATE`
	return r.scanTieredLeague(executorOr(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTieredLeagueRepository) list(ctx context.Context, query string, arg int) ([]*models.TieredLeague, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiered leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.TieredLeague, 0)
	for rows.Next() {
		l, err := r.scanTieredLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tiered league row: %w", err)
		}
		leagues = append(leagues, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tiered league rows: %w", err)
	}
	return leagues, nil
}

func (r *postgresTieredLeagueRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error) {
	query := `SELECT ` + tieredLeagueColumns + ` FROM tiered_leagues WHERE league_id = $1 ORDER BY id ASC`
	return r.list(ctx, query, leagueID)
}

func (r *postgresTieredLeagueRepository) ListByCompetition(ctx context.Context, competitionID int) ([]*models.TieredLeague, error) {
	query := `SELECT ` + tieredLeagueColumns + ` FROM tiered_leagues WHERE parent_competition_id = $1 ORDER BY id ASC`
	return r.list(ctx, query, competitionID)
}

func (r *postgresTieredLeagueRepository) Update(ctx context.Context, exec SQLExecutor, l *models.TieredLeague) error {
	query := `
		UPDATE tiered_leagues SET
			name = $1, number_of_tiers = $2, drivers_per_tier = $3, races_before_shuffle = $4,
			promotion_spots = $5, relegation_spots = $6, tier_names = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`
	err := executorOr(r.db, exec).QueryRowContext(ctx, query,
		l.Name, l.NumberOfTiers, l.DriversPerTier, l.RacesBeforeShuffle,
		l.PromotionSpots, l.RelegationSpots, pq.Array(l.TierNames), l.ID,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTieredLeagueNotFound
		}
		return fmt.Errorf("failed to update tiered league %d: %w", l.ID, err)
	}
	return nil
}

func (r *postgresTieredLeagueRepository) UpdateLastShuffleRace(ctx context.Context, exec SQLExecutor, id int, raceNumber int) error {
	query := `UPDATE tiered_leagues SET last_shuffle_race = $1, updated_at = NOW() WHERE id = $2`
	result, err := executorOr(r.db, exec).ExecContext(ctx, query, raceNumber, id)
	if err != nil {
		return fmt.Errorf("failed to record shuffle race for tiered league %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTieredLeagueNotFound)
}

// Delete removes the league; assignments, movements and notifications go with
// it through ON DELETE CASCADE.
func (r *postgresTieredLeagueRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tiered_leagues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tiered league %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTieredLeagueNotFound)
}
