package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads the account table owned by the auth side. Only the
// contact fields needed for notifications are exposed.
type UserRepository interface {
	GetProfile(ctx context.Context, profileID int) (*models.Profile, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) GetProfile(ctx context.Context, profileID int) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT id, nickname, email FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(&p.ID, &p.Nickname, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile %d: %w", profileID, err)
	}
	return &p, nil
}
