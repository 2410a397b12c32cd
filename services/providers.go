package services

import (
	"context"

	"github.com/Dosada05/karting-league/models"
)

// RaceResultsProvider is the race-results collaborator. Only completed races
// are counted and summed.
type RaceResultsProvider interface {
	GetCompletedRaceCount(ctx context.Context, competitionID int) (int, error)
	GetPointsForDriver(ctx context.Context, competitionID, profileID int, races models.RaceRange) (int, error)
}

// EnrollmentProvider answers whether a profile is a confirmed participant of
// a competition.
type EnrollmentProvider interface {
	IsEnrolled(ctx context.Context, competitionID, profileID int) (bool, error)
}

// NotificationSink receives committed notifications for delivery. Delivery
// is best effort and never fails the operation that produced them.
type NotificationSink interface {
	Deliver(ctx context.Context, notifications []*models.TierMovementNotification)
}

// ReportArchiver stores a copy of every applied shuffle.
type ReportArchiver interface {
	ArchiveShuffle(ctx context.Context, outcome *ShuffleOutcome) error
}

// NotificationSinks fans delivery out to every sink in order.
type NotificationSinks []NotificationSink

func (s NotificationSinks) Deliver(ctx context.Context, notifications []*models.TierMovementNotification) {
	for _, sink := range s {
		sink.Deliver(ctx, notifications)
	}
}
