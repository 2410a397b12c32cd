package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandings_TierRankedByPoints(t *testing.T) {
	h := newHarness()
	league := h.threeTierLeague()
	h.runRaces(3, referencePoints)

	got, err := h.standings.TierStandings(context.Background(), league.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gold", got.TierName)
	require.Len(t, got.Standings, 2)
	assert.Equal(t, driverA, got.Standings[0].ProfileID)
	assert.Equal(t, 30, got.Standings[0].Points)
	assert.Equal(t, 1, got.Standings[0].Position)
	assert.Equal(t, driverB, got.Standings[1].ProfileID)
	assert.Equal(t, 24, got.Standings[1].Points)
	assert.Equal(t, 2, got.Standings[1].Position)
}

func TestStandings_AllTiersIncludingEmpty(t *testing.T) {
	h := newHarness()
	league := h.threeTierLeague()
	_, err := h.assignments.Remove(context.Background(), league.ID, driverE)
	require.NoError(t, err)

	all, err := h.standings.AllStandings(context.Background(), league.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Gold", "Silver", "Bronze"}, []string{all[0].TierName, all[1].TierName, all[2].TierName})
	assert.Len(t, all[0].Standings, 2)
	assert.Len(t, all[1].Standings, 2)
	assert.Empty(t, all[2].Standings)
}

func TestStandings_PointsResetAfterShuffle(t *testing.T) {
	h := newHarness()
	league := h.threeTierLeague()
	h.runRaces(3, referencePoints)
	_, err := h.shuffles.Evaluate(context.Background(), league.ID, ShuffleOptions{})
	require.NoError(t, err)

	got, err := h.standings.TierStandings(context.Background(), league.ID, 1)
	require.NoError(t, err)
	require.Len(t, got.Standings, 2)
	// Everyone is on zero, so the profile id decides the order.
	assert.Equal(t, driverA, got.Standings[0].ProfileID)
	assert.Equal(t, driverC, got.Standings[1].ProfileID)
	for _, st := range got.Standings {
		assert.Zero(t, st.Points)
	}

	h.runRaces(1, map[int]int{driverC: 25, driverA: 18})
	got, err = h.standings.TierStandings(context.Background(), league.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, driverC, got.Standings[0].ProfileID)
	assert.Equal(t, 25, got.Standings[0].Points)
	assert.Equal(t, 18, got.Standings[1].Points)
}

func TestStandings_ManualMoveOnlyCountsRacesInNewTier(t *testing.T) {
	h := newHarness()
	league := h.threeTierLeague()
	h.runRaces(2, referencePoints)

	_, err := h.assignments.Move(context.Background(), league.ID, driverE, MoveDriverInput{TierNumber: 1})
	require.NoError(t, err)
	h.runRaces(1, referencePoints)

	got, err := h.standings.TierStandings(context.Background(), league.ID, 1)
	require.NoError(t, err)
	points := map[int]int{}
	for _, st := range got.Standings {
		points[st.ProfileID] = st.Points
	}
	assert.Equal(t, map[int]int{driverA: 30, driverB: 24, driverE: 2}, points)
}

func TestStandings_Errors(t *testing.T) {
	h := newHarness()
	league := h.threeTierLeague()

	_, err := h.standings.TierStandings(context.Background(), league.ID, 4)
	assert.ErrorIs(t, err, ErrTierNotFound)

	_, err = h.standings.TierStandings(context.Background(), 4242, 1)
	assert.ErrorIs(t, err, ErrTieredLeagueNotFound)

	h.store.resultsErr = errors.New("results service down")
	_, err = h.standings.AllStandings(context.Background(), league.ID)
	assert.ErrorIs(t, err, ErrTransient)
}
