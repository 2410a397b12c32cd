package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/karting-league/models"
	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/tiers"
)

var errConnectionReset = errors.New("read tcp: connection reset by peer")

type assignmentKey struct{ league, profile int }
type enrollmentKey struct{ competition, profile int }

// memStore is an in-memory stand-in for the Postgres schema. Transactions
// are serialized and roll back to a snapshot on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	leagues       map[int]models.TieredLeague
	assignments   map[assignmentKey]models.TierAssignment
	movements     []models.TierMovement
	notifications []models.TierMovementNotification
	nextID        int64

	completed map[int]int
	points    map[int]map[int]map[int]int
	enrolled  map[enrollmentKey]bool

	failMovementInsertAt int
	movementInserts      int
	resultsErr           error
}

func newMemStore() *memStore {
	return &memStore{
		leagues:     make(map[int]models.TieredLeague),
		assignments: make(map[assignmentKey]models.TierAssignment),
		completed:   make(map[int]int),
		points:      make(map[int]map[int]map[int]int),
		enrolled:    make(map[enrollmentKey]bool),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	leagues       map[int]models.TieredLeague
	assignments   map[assignmentKey]models.TierAssignment
	movements     []models.TierMovement
	notifications []models.TierMovementNotification
	nextID        int64
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		leagues:       make(map[int]models.TieredLeague, len(s.leagues)),
		assignments:   make(map[assignmentKey]models.TierAssignment, len(s.assignments)),
		movements:     append([]models.TierMovement(nil), s.movements...),
		notifications: append([]models.TierMovementNotification(nil), s.notifications...),
		nextID:        s.nextID,
	}
	for k, v := range s.leagues {
		snap.leagues[k] = copyLeague(v)
	}
	for k, v := range s.assignments {
		snap.assignments[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leagues = snap.leagues
	s.assignments = snap.assignments
	s.movements = snap.movements
	s.notifications = snap.notifications
	s.nextID = snap.nextID
}

func copyLeague(l models.TieredLeague) models.TieredLeague {
	l.TierNames = append([]string(nil), l.TierNames...)
	if l.LastShuffleRace != nil {
		v := *l.LastShuffleRace
		l.LastShuffleRace = &v
	}
	return l
}

// seeding helpers

func (s *memStore) addLeague(l models.TieredLeague) *models.TieredLeague {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = int(s.id())
	}
	s.leagues[l.ID] = copyLeague(l)
	out := copyLeague(l)
	return &out
}

func (s *memStore) assign(leagueID, profileID, tier, since int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[assignmentKey{leagueID, profileID}] = models.TierAssignment{
		ID: int(s.id()), TieredLeagueID: leagueID, ProfileID: profileID, TierNumber: tier, SinceRaceNumber: since,
	}
}

func (s *memStore) enroll(competitionID int, profileIDs ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profileIDs {
		s.enrolled[enrollmentKey{competitionID, p}] = true
	}
}

// completeRace records a completed race and the points each driver scored.
func (s *memStore) completeRace(competitionID int, pointsByProfile map[int]int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[competitionID]++
	race := s.completed[competitionID]
	if s.points[competitionID] == nil {
		s.points[competitionID] = make(map[int]map[int]int)
	}
	for profile, pts := range pointsByProfile {
		if s.points[competitionID][profile] == nil {
			s.points[competitionID][profile] = make(map[int]int)
		}
		s.points[competitionID][profile][race] = pts
	}
	return race
}

func (s *memStore) tierOf(leagueID, profileID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[assignmentKey{leagueID, profileID}]
	return a.TierNumber, ok
}

func (s *memStore) assignmentOf(leagueID, profileID int) (models.TierAssignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[assignmentKey{leagueID, profileID}]
	return a, ok
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) notificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

func (s *memStore) assignmentCount(leagueID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.assignments {
		if k.league == leagueID {
			n++
		}
	}
	return n
}

// tx

type memTx struct{ store *memStore }

func (t *memTx) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) (err error) {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
		if err != nil {
			t.store.restore(snap)
		}
	}()
	return fn(nil)
}

// tiered leagues

type memLeagueRepo struct{ store *memStore }

func (r *memLeagueRepo) Create(ctx context.Context, l *models.TieredLeague) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.leagues {
		if existing.LeagueID == l.LeagueID && existing.ParentCompetitionID == l.ParentCompetitionID {
			return repositories.ErrTieredLeagueConflict
		}
	}
	l.ID = int(r.store.id())
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.store.leagues[l.ID] = copyLeague(*l)
	return nil
}

func (r *memLeagueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.TieredLeague, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.leagues[id]
	if !ok {
		return nil, repositories.ErrTieredLeagueNotFound
	}
	out := copyLeague(l)
	return &out, nil
}

func (r *memLeagueRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.TieredLeague, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memLeagueRepo) list(match func(models.TieredLeague) bool) []*models.TieredLeague {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.TieredLeague, 0)
	for _, l := range r.store.leagues {
		if match(l) {
			c := copyLeague(l)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memLeagueRepo) ListByLeague(ctx context.Context, leagueID int) ([]*models.TieredLeague, error) {
	return r.list(func(l models.TieredLeague) bool { return l.LeagueID == leagueID }), nil
}

func (r *memLeagueRepo) ListByCompetition(ctx context.Context, competitionID int) ([]*models.TieredLeague, error) {
	return r.list(func(l models.TieredLeague) bool { return l.ParentCompetitionID == competitionID }), nil
}

func (r *memLeagueRepo) Update(ctx context.Context, exec repositories.SQLExecutor, l *models.TieredLeague) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.leagues[l.ID]
	if !ok {
		return repositories.ErrTieredLeagueNotFound
	}
	updated := copyLeague(*l)
	updated.LastShuffleRace = existing.LastShuffleRace
	updated.UpdatedAt = time.Now()
	r.store.leagues[l.ID] = updated
	return nil
}

func (r *memLeagueRepo) UpdateLastShuffleRace(ctx context.Context, exec repositories.SQLExecutor, id int, raceNumber int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.leagues[id]
	if !ok {
		return repositories.ErrTieredLeagueNotFound
	}
	race := raceNumber
	l.LastShuffleRace = &race
	r.store.leagues[id] = l
	return nil
}

func (r *memLeagueRepo) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.leagues[id]; !ok {
		return repositories.ErrTieredLeagueNotFound
	}
	delete(r.store.leagues, id)
	for k := range r.store.assignments {
		if k.league == id {
			delete(r.store.assignments, k)
		}
	}
	return nil
}

// tier assignments

type memAssignmentRepo struct{ store *memStore }

func (r *memAssignmentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, a *models.TierAssignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.leagues[a.TieredLeagueID]; !ok {
		return repositories.ErrTierAssignmentInvalid
	}
	key := assignmentKey{a.TieredLeagueID, a.ProfileID}
	if _, ok := r.store.assignments[key]; ok {
		return repositories.ErrTierAssignmentConflict
	}
	a.ID = int(r.store.id())
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.store.assignments[key] = *a
	return nil
}

func (r *memAssignmentRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, a *models.TierAssignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.leagues[a.TieredLeagueID]; !ok {
		return repositories.ErrTierAssignmentInvalid
	}
	key := assignmentKey{a.TieredLeagueID, a.ProfileID}
	if existing, ok := r.store.assignments[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = int(r.store.id())
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	stored := *a
	stored.TierName = ""
	r.store.assignments[key] = stored
	return nil
}

func (r *memAssignmentRepo) GetByLeagueAndProfile(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID, profileID int) (*models.TierAssignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assignments[assignmentKey{tieredLeagueID, profileID}]
	if !ok {
		return nil, repositories.ErrTierAssignmentNotFound
	}
	return &a, nil
}

func (r *memAssignmentRepo) list(match func(models.TierAssignment) bool) []*models.TierAssignment {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.TierAssignment, 0)
	for _, a := range r.store.assignments {
		if match(a) {
			c := a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TierNumber != out[j].TierNumber {
			return out[i].TierNumber < out[j].TierNumber
		}
		return out[i].ProfileID < out[j].ProfileID
	})
	return out
}

func (r *memAssignmentRepo) ListByLeague(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID int) ([]*models.TierAssignment, error) {
	return r.list(func(a models.TierAssignment) bool { return a.TieredLeagueID == tieredLeagueID }), nil
}

func (r *memAssignmentRepo) ListByTier(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID, tierNumber int) ([]*models.TierAssignment, error) {
	return r.list(func(a models.TierAssignment) bool {
		return a.TieredLeagueID == tieredLeagueID && a.TierNumber == tierNumber
	}), nil
}

func (r *memAssignmentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID, profileID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := assignmentKey{tieredLeagueID, profileID}
	if _, ok := r.store.assignments[key]; !ok {
		return repositories.ErrTierAssignmentNotFound
	}
	delete(r.store.assignments, key)
	return nil
}

func (r *memAssignmentRepo) MaxTier(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID int) (int, error) {
	max := 0
	for _, a := range r.list(func(a models.TierAssignment) bool { return a.TieredLeagueID == tieredLeagueID }) {
		if a.TierNumber > max {
			max = a.TierNumber
		}
	}
	return max, nil
}

// movements

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Insert(ctx context.Context, exec repositories.SQLExecutor, m *models.TierMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movementInserts++
	if r.store.failMovementInsertAt > 0 && r.store.movementInserts == r.store.failMovementInsertAt {
		return errConnectionReset
	}
	for _, existing := range r.store.movements {
		if existing.OperationKey == m.OperationKey {
			return repositories.ErrTierMovementDuplicate
		}
	}
	m.ID = r.store.id()
	m.CreatedAt = time.Now()
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *memMovementRepo) LatestForProfile(ctx context.Context, exec repositories.SQLExecutor, tieredLeagueID, profileID int) (*models.TierMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		m := r.store.movements[i]
		if m.TieredLeagueID == tieredLeagueID && m.ProfileID == profileID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByLeague(ctx context.Context, tieredLeagueID int, filter repositories.ListMovementsFilter) ([]*models.TierMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.TierMovement, 0)
	for _, m := range r.store.movements {
		if m.TieredLeagueID != tieredLeagueID {
			continue
		}
		if filter.ProfileID != nil && m.ProfileID != *filter.ProfileID {
			continue
		}
		if filter.ShuffleID != nil && (m.ShuffleID == nil || *m.ShuffleID != *filter.ShuffleID) {
			continue
		}
		c := m
		out = append(out, &c)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.TierMovement{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// notifications

type memNotificationRepo struct{ store *memStore }

func (r *memNotificationRepo) withMovement(n models.TierMovementNotification) *models.TierMovementNotification {
	for _, m := range r.store.movements {
		if m.ID == n.MovementID {
			c := m
			n.Movement = &c
			break
		}
	}
	return &n
}

func (r *memNotificationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, n *models.TierMovementNotification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.notifications {
		if existing.MovementID == n.MovementID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	n.ID = r.store.id()
	n.CreatedAt = time.Now()
	n.IsRead = false
	stored := *n
	stored.Movement = nil
	r.store.notifications = append(r.store.notifications, stored)
	return nil
}

func (r *memNotificationRepo) GetByID(ctx context.Context, id int64) (*models.TierMovementNotification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.ID == id {
			return r.withMovement(n), nil
		}
	}
	return nil, repositories.ErrTierNotificationNotFound
}

func (r *memNotificationRepo) ListByProfile(ctx context.Context, profileID int, unreadOnly bool) ([]*models.TierMovementNotification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.TierMovementNotification, 0)
	for i := len(r.store.notifications) - 1; i >= 0; i-- {
		n := r.store.notifications[i]
		if n.ProfileID != profileID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, r.withMovement(n))
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id int64, profileID int) (*models.TierMovementNotification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, n := range r.store.notifications {
		if n.ID == id && n.ProfileID == profileID {
			if n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
			n.IsRead = true
			r.store.notifications[i] = n
			return r.withMovement(n), nil
		}
	}
	return nil, repositories.ErrTierNotificationNotFound
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, profileID int) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	now := time.Now()
	for i, n := range r.store.notifications {
		if n.ProfileID == profileID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			r.store.notifications[i] = n
			count++
		}
	}
	return count, nil
}

// collaborators

type memResults struct{ store *memStore }

func (r *memResults) GetCompletedRaceCount(ctx context.Context, competitionID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.resultsErr != nil {
		return 0, r.store.resultsErr
	}
	return r.store.completed[competitionID], nil
}

func (r *memResults) GetPointsForDriver(ctx context.Context, competitionID, profileID int, races models.RaceRange) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.resultsErr != nil {
		return 0, r.store.resultsErr
	}
	total := 0
	for race, pts := range r.store.points[competitionID][profileID] {
		if race > races.After && race <= races.Through {
			total += pts
		}
	}
	return total, nil
}

type memEnrollment struct{ store *memStore }

func (e *memEnrollment) IsEnrolled(ctx context.Context, competitionID, profileID int) (bool, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.enrolled[enrollmentKey{competitionID, profileID}], nil
}

type recordingSink struct {
	mu        sync.Mutex
	delivered []*models.TierMovementNotification
}

func (s *recordingSink) Deliver(ctx context.Context, notifications []*models.TierMovementNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, notifications...)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

type recordingArchiver struct {
	mu       sync.Mutex
	outcomes []*ShuffleOutcome
	err      error
}

func (a *recordingArchiver) ArchiveShuffle(ctx context.Context, outcome *ShuffleOutcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, outcome)
	return a.err
}

var (
	_ repositories.TxRunner                   = (*memTx)(nil)
	_ repositories.TieredLeagueRepository     = (*memLeagueRepo)(nil)
	_ repositories.TierAssignmentRepository   = (*memAssignmentRepo)(nil)
	_ repositories.TierMovementRepository     = (*memMovementRepo)(nil)
	_ repositories.TierNotificationRepository = (*memNotificationRepo)(nil)
	_ RaceResultsProvider                     = (*memResults)(nil)
	_ EnrollmentProvider                      = (*memEnrollment)(nil)
	_ NotificationSink                        = (*recordingSink)(nil)
	_ ReportArchiver                          = (*recordingArchiver)(nil)
)

// harness wires every service against one memStore.
type harness struct {
	store         *memStore
	sink          *recordingSink
	archiver      *recordingArchiver
	locker        *tiers.LeagueLocker
	leagues       TieredLeagueService
	standings     StandingsService
	shuffles      ShuffleService
	assignments   AssignmentService
	notifications NotificationService
}

func newHarness() *harness {
	store := newMemStore()
	h := &harness{
		store:    store,
		sink:     &recordingSink{},
		archiver: &recordingArchiver{},
		locker:   tiers.NewLeagueLocker(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	leagueRepo := &memLeagueRepo{store: store}
	assignmentRepo := &memAssignmentRepo{store: store}
	movementRepo := &memMovementRepo{store: store}
	notificationRepo := &memNotificationRepo{store: store}
	results := &memResults{store: store}
	tx := &memTx{store: store}

	h.leagues = NewTieredLeagueService(leagueRepo, assignmentRepo, tx, h.locker, logger)
	h.standings = NewStandingsService(leagueRepo, assignmentRepo, results, 4)
	h.shuffles = NewShuffleService(ShuffleServiceDeps{
		LeagueRepo:       leagueRepo,
		AssignmentRepo:   assignmentRepo,
		MovementRepo:     movementRepo,
		NotificationRepo: notificationRepo,
		Results:          results,
		Tx:               tx,
		Locker:           h.locker,
		Sink:             h.sink,
		Archiver:         h.archiver,
		Concurrency:      4,
		Logger:           logger,
	})
	h.assignments = NewAssignmentService(AssignmentServiceDeps{
		LeagueRepo:       leagueRepo,
		AssignmentRepo:   assignmentRepo,
		MovementRepo:     movementRepo,
		NotificationRepo: notificationRepo,
		Results:          results,
		Enrollment:       &memEnrollment{store: store},
		Tx:               tx,
		Locker:           h.locker,
		Sink:             h.sink,
		Logger:           logger,
	})
	h.notifications = NewNotificationService(notificationRepo)
	return h
}

const testCompetitionID = 100

// threeTierLeague seeds the reference scenario: tier 1 {A,B}, tier 2 {C,D},
// tier 3 {E}, one spot each way, shuffle every three races.
func (h *harness) threeTierLeague() *models.TieredLeague {
	league := h.store.addLeague(models.TieredLeague{
		LeagueID:            1,
		ParentCompetitionID: testCompetitionID,
		Name:                "Winter Series",
		NumberOfTiers:       3,
		DriversPerTier:      2,
		RacesBeforeShuffle:  3,
		PromotionSpots:      1,
		RelegationSpots:     1,
		TierNames:           []string{"Gold", "Silver", "Bronze"},
	})
	h.store.enroll(testCompetitionID, driverA, driverB, driverC, driverD, driverE, driverX)
	h.store.assign(league.ID, driverA, 1, 0)
	h.store.assign(league.ID, driverB, 1, 0)
	h.store.assign(league.ID, driverC, 2, 0)
	h.store.assign(league.ID, driverD, 2, 0)
	h.store.assign(league.ID, driverE, 3, 0)
	return league
}

// runRaces completes n races where every driver scores the same points each
// race, so cumulative totals keep the reference ordering.
func (h *harness) runRaces(n int, perRace map[int]int) {
	for i := 0; i < n; i++ {
		h.store.completeRace(testCompetitionID, perRace)
	}
}

const (
	driverA = 1
	driverB = 2
	driverC = 3
	driverD = 4
	driverE = 5
	driverX = 6
)

// referencePoints scales to A=50, B=40, C=30, D=20, E=10 over five races.
var referencePoints = map[int]int{driverA: 10, driverB: 8, driverC: 6, driverD: 4, driverE: 2}
