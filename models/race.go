package models

// RaceRange is the half-open race-number window (After, Through].
type RaceRange struct {
	After   int `json:"after"`
	Through int `json:"through"`
}

func (r RaceRange) Empty() bool {
	return r.Through <= r.After
}

type RaceStatus string

const (
	RaceScheduled RaceStatus = "scheduled"
	RaceCompleted RaceStatus = "completed"
	RaceCanceled  RaceStatus = "canceled"
)
