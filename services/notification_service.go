package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
)

type NotificationService interface {
	List(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error)
	MarkRead(ctx context.Context, profileID int, notificationID int64) (*models.TierMovementNotification, error)
	MarkAllRead(ctx context.Context, profileID int) (int64, error)
}

type notificationService struct {
	repo repositories.TierNotificationRepository
}

func NewNotificationService(repo repositories.TierNotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error) {
	notifications, err := s.repo.ListByProfile(ctx, profileID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications of profile %d: %w", profileID, err)
	}
	if notifications == nil {
		return []*models.TierMovementNotification{}, nil
	}
	return notifications, nil
}

// MarkRead is allowed for the recipient only. Marking an already read
// notification succeeds and keeps its original read time.
func (s *notificationService) MarkRead(ctx context.Context, profileID int, notificationID int64) (*models.TierMovementNotification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if n.ProfileID != profileID {
		return nil, fmt.Errorf("%w: notification %d belongs to another driver", ErrForbiddenOperation, notificationID)
	}
	if n.IsRead {
		return n, nil
	}
	updated, err := s.repo.MarkRead(ctx, notificationID, profileID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return updated, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, profileID int) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, profileID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications of profile %d read: %w", profileID, err)
	}
	return count, nil
}
