package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/karting-league/models"
)

// RaceResultRepository reads the race tables owned by the competition
// management side. Only completed races count.
type RaceResultRepository interface {
	GetCompletedRaceCount(ctx context.Context, competitionID int) (int, error)
	GetPointsForDriver(ctx context.Context, competitionID, profileID int, races models.RaceRange) (int, error)
}

type postgresRaceResultRepository struct {
	db *sql.DB
}

func NewPostgresRaceResultRepository(db *sql.DB) RaceResultRepository {
	return &postgresRaceResultRepository{db: db}
}

func (r *postgresRaceResultRepository) GetCompletedRaceCount(ctx context.Context, competitionID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM races WHERE competition_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, competitionID, models.RaceCompleted).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed races for competition %d: %w", competitionID, err)
	}
	return count, nil
}

func (r *postgresRaceResultRepository) GetPointsForDriver(ctx context.Context, competitionID, profileID int, races models.RaceRange) (int, error) {
	if races.Empty() {
		return 0, nil
	}
	var points int
	query := `
		SELECT COALESCE(SUM(rr.points), 0)
		FROM race_results rr
		JOIN races r ON r.competition_id = rr.competition_id AND r.race_number = rr.race_number
		WHERE rr.competition_id = $1
		  AND rr.profile_id = $2
		  AND r.status = $3
		  AND rr.race_number > $4
		  AND rr.race_number <= $5`
	err := r.db.QueryRowContext(ctx, query, competitionID, profileID, models.RaceCompleted, races.After, races.Through).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points for profile %d in competition %d: %w", profileID, competitionID, err)
	}
	return points, nil
}
