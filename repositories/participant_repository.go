package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
)

var ErrParticipantNotFound = errors.New("participant not found")

// ParticipantRepository is the enrollment view of a competition.
type ParticipantRepository interface {
	FindByProfileAndCompetition(ctx context.Context, profileID, competitionID int) (*models.Participant, error)
	ListByCompetition(ctx context.Context, competitionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error)
	IsEnrolled(ctx context.Context, competitionID, profileID int) (bool, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	if err := row.Scan(&p.ID, &p.ProfileID, &p.CompetitionID, &p.Status, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresParticipantRepository) FindByProfileAndCompetition(ctx context.Context, profileID, competitionID int) (*models.Participant, error) {
	query := `SELECT id, profile_id, competition_id, status, created_at FROM participants WHERE profile_id = $1 AND competition_id = $2`
	return r.scanParticipant(r.db.QueryRowContext(ctx, query, profileID, competitionID))
}

func (r *postgresParticipantRepository) ListByCompetition(ctx context.Context, competitionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	query := `SELECT id, profile_id, competition_id, status, created_at FROM participants WHERE competition_id = $1`
	args := []interface{}{competitionID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by competition: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, err := r.scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) IsEnrolled(ctx context.Context, competitionID, profileID int) (bool, error) {
	p, err := r.FindByProfileAndCompetition(ctx, profileID, competitionID)
	if err != nil {
		if errors.Is(err, ErrParticipantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check enrollment of profile %d: %w", profileID, err)
	}
	return p.Status == models.StatusParticipant, nil
}
