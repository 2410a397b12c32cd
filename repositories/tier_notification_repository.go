package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/models"
	"github.com/google/uuid"
)

var ErrTierNotificationNotFound = errors.New("tier movement notification not found")

type TierNotificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, n *models.TierMovementNotification) error
	GetByID(ctx context.Context, id int64) (*models.TierMovementNotification, error)
	ListByProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error)
	// MarkRead flips is_read for the recipient only; other profiles get not-found.
	MarkRead(ctx context.Context, id int64, profileID int) (*models.TierMovementNotification, error)
	MarkAllRead(ctx context.Context, profileID int) (int64, error)
}

type postgresTierNotificationRepository struct {
	db *sql.DB
}

func NewPostgresTierNotificationRepository(db *sql.DB) TierNotificationRepository {
	return &postgresTierNotificationRepository{db: db}
}

const notificationWithMovementSQL = `
	SELECT n.id, n.profile_id, n.movement_id, n.is_read, n.created_at, n.read_at,
	       m.id, m.tiered_league_id, m.profile_id, m.from_tier, m.to_tier, m.movement_type,
	       m.after_race_number, m.shuffle_id, m.operation_key, m.created_at
	FROM tier_movement_notifications n
	JOIN tier_movements m ON m.id = n.movement_id`

func scanNotification(row rowScanner) (*models.TierMovementNotification, error) {
	var n models.TierMovementNotification
	var m models.TierMovement
	var readAt sql.NullTime
	var fromTier, toTier sql.NullInt64
	var shuffleID uuid.NullUUID
	err := row.Scan(
		&n.ID, &n.ProfileID, &n.MovementID, &n.IsRead, &n.CreatedAt, &readAt,
		&m.ID, &m.TieredLeagueID, &m.ProfileID, &fromTier, &toTier, &m.MovementType,
		&m.AfterRaceNumber, &shuffleID, &m.OperationKey, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTierNotificationNotFound
		}
		return nil, err
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	m.FromTier = nullIntPtr(fromTier)
	m.ToTier = nullIntPtr(toTier)
	if shuffleID.Valid {
		id := shuffleID.UUID
		m.ShuffleID = &id
	}
	n.Movement = &m
	return &n, nil
}

func (r *postgresTierNotificationRepository) Create(ctx context.Context, exec SQLExecutor, n *models.TierMovementNotification) error {
	query := `
		INSERT INTO tier_movement_notifications (profile_id, movement_id, is_read)
		VALUES ($1, $2, FALSE)
		RETURNING id, created_at`
	err := executorOr(r.db, exec).QueryRowContext(ctx, query, n.ProfileID, n.MovementID).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification for movement %d: %w", n.MovementID, err)
	}
	n.IsRead = false
	return nil
}

func (r *postgresTierNotificationRepository) GetByID(ctx context.Context, id int64) (*models.TierMovementNotification, error) {
	return scanNotification(r.db.QueryRowContext(ctx, notificationWithMovementSQL+` WHERE n.id = $1`, id))
}

func (r *postgresTierNotificationRepository) ListByProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error) {
	query := notificationWithMovementSQL + ` WHERE n.profile_id = $1`
	if unreadOnly {
		query += ` AND n.is_read = FALSE`
	}
	query += ` ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.TierMovementNotification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (r *postgresTierNotificationRepository) MarkRead(ctx context.Context, id int64, profileID int) (*models.TierMovementNotification, error) {
	query := `
		UPDATE tier_movement_notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND profile_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	if err := checkAffectedRows(result, ErrTierNotificationNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresTierNotificationRepository) MarkAllRead(ctx context.Context, profileID int) (int64, error) {
	query := `
		UPDATE tier_movement_notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE profile_id = $1 AND is_read = FALSE`
	result, err := r.db.ExecContext(ctx, query, profileID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}
