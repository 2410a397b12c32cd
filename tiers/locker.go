package tiers

import (
	"context"
	"sync"
)

// LeagueLocker serializes writers per tiered league. Shuffles and admin
// moves on the same league run one at a time; different leagues proceed
// in parallel.
type LeagueLocker struct {
	mu    sync.Mutex
	slots map[int]*leagueSlot
}

type leagueSlot struct {
	sem  chan struct{}
	refs int
}

func NewLeagueLocker() *LeagueLocker {
	return &LeagueLocker{slots: make(map[int]*leagueSlot)}
}

// Acquire blocks until the league's section is free or ctx is done. The
// returned release func must be called exactly once.
func (l *LeagueLocker) Acquire(ctx context.Context, tieredLeagueID int) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[tieredLeagueID]
	if !ok {
		slot = &leagueSlot{sem: make(chan struct{}, 1)}
		l.slots[tieredLeagueID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		l.forget(tieredLeagueID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			l.forget(tieredLeagueID, slot)
		})
	}, nil
}

func (l *LeagueLocker) forget(tieredLeagueID int, slot *leagueSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, tieredLeagueID)
	}
}

// Held returns the number of leagues with a waiter or holder.
func (l *LeagueLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
