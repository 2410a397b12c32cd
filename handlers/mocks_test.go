package handlers

import (
	"context"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/services"
	"github.com/stretchr/testify/mock"
)

type mockTieredLeagueService struct{ mock.Mock }

func (m *mockTieredLeagueService) Create(ctx context.Context, input services.CreateTieredLeagueInput) (*models.TieredLeague, error) {
	args := m.Called(ctx, input)
	league, _ := args.Get(0).(*models.TieredLeague)
	return league, args.Error(1)
}

func (m *mockTieredLeagueService) GetByID(ctx context.Context, id int) (*models.TieredLeague, error) {
	args := m.Called(ctx, id)
	league, _ := args.Get(0).(*models.TieredLeague)
	return league, args.Error(1)
}

func (m *mockTieredLeagueService) ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error) {
	args := m.Called(ctx, leagueID)
	leagues, _ := args.Get(0).([]*models.TieredLeague)
	return leagues, args.Error(1)
}

func (m *mockTieredLeagueService) Update(ctx context.Context, id int, input services.UpdateTieredLeagueInput) (*models.TieredLeague, error) {
	args := m.Called(ctx, id, input)
	league, _ := args.Get(0).(*models.TieredLeague)
	return league, args.Error(1)
}

func (m *mockTieredLeagueService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTieredLeagueService) TierNames(ctx context.Context, id int) ([]models.TierName, error) {
	args := m.Called(ctx, id)
	names, _ := args.Get(0).([]models.TierName)
	return names, args.Error(1)
}

func (m *mockTieredLeagueService) ListAssignments(ctx context.Context, id int, tierNumber *int) ([]*models.TierAssignment, error) {
	args := m.Called(ctx, id, tierNumber)
	assignments, _ := args.Get(0).([]*models.TierAssignment)
	return assignments, args.Error(1)
}

func (m *mockTieredLeagueService) GetActiveTier(ctx context.Context, id, profileID int) (*models.TierAssignment, bool, error) {
	args := m.Called(ctx, id, profileID)
	assignment, _ := args.Get(0).(*models.TierAssignment)
	return assignment, args.Bool(1), args.Error(2)
}

type mockStandingsService struct{ mock.Mock }

func (m *mockStandingsService) TierStandings(ctx context.Context, id, tier int) (*models.TierStandings, error) {
	args := m.Called(ctx, id, tier)
	standings, _ := args.Get(0).(*models.TierStandings)
	return standings, args.Error(1)
}

func (m *mockStandingsService) AllStandings(ctx context.Context, id int) ([]models.TierStandings, error) {
	args := m.Called(ctx, id)
	standings, _ := args.Get(0).([]models.TierStandings)
	return standings, args.Error(1)
}

type mockAssignmentService struct{ mock.Mock }

func (m *mockAssignmentService) Assign(ctx context.Context, id int, input services.AssignDriverInput) (*services.AssignmentResult, error) {
	args := m.Called(ctx, id, input)
	result, _ := args.Get(0).(*services.AssignmentResult)
	return result, args.Error(1)
}

func (m *mockAssignmentService) Remove(ctx context.Context, id, profileID int) (*services.AssignmentResult, error) {
	args := m.Called(ctx, id, profileID)
	result, _ := args.Get(0).(*services.AssignmentResult)
	return result, args.Error(1)
}

func (m *mockAssignmentService) Move(ctx context.Context, id, profileID int, input services.MoveDriverInput) (*services.AssignmentResult, error) {
	args := m.Called(ctx, id, profileID, input)
	result, _ := args.Get(0).(*services.AssignmentResult)
	return result, args.Error(1)
}

type mockShuffleService struct{ mock.Mock }

func (m *mockShuffleService) Evaluate(ctx context.Context, id int, opts services.ShuffleOptions) (*services.ShuffleOutcome, error) {
	args := m.Called(ctx, id, opts)
	outcome, _ := args.Get(0).(*services.ShuffleOutcome)
	return outcome, args.Error(1)
}

func (m *mockShuffleService) Preview(ctx context.Context, id int) (*services.ShufflePreview, error) {
	args := m.Called(ctx, id)
	preview, _ := args.Get(0).(*services.ShufflePreview)
	return preview, args.Error(1)
}

func (m *mockShuffleService) HandleRaceCompleted(ctx context.Context, competitionID int) ([]*services.ShuffleOutcome, error) {
	args := m.Called(ctx, competitionID)
	outcomes, _ := args.Get(0).([]*services.ShuffleOutcome)
	return outcomes, args.Error(1)
}

func (m *mockShuffleService) ListMovements(ctx context.Context, id int, filter repositories.ListMovementsFilter) ([]*models.TierMovement, error) {
	args := m.Called(ctx, id, filter)
	movements, _ := args.Get(0).([]*models.TierMovement)
	return movements, args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) List(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error) {
	args := m.Called(ctx, profileID, unreadOnly)
	notifications, _ := args.Get(0).([]*models.TierMovementNotification)
	return notifications, args.Error(1)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, profileID int, notificationID int64) (*models.TierMovementNotification, error) {
	args := m.Called(ctx, profileID, notificationID)
	notification, _ := args.Get(0).(*models.TierMovementNotification)
	return notification, args.Error(1)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, profileID int) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}
