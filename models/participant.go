package models

import "time"

type ParticipantStatus string

const (
	StatusApplicationSubmitted ParticipantStatus = "application_submitted"
	StatusParticipant          ParticipantStatus = "participant"
	StatusApplicationRejected  ParticipantStatus = "application_rejected"
)

// Participant is a driver's enrollment in a competition. Only confirmed
// participants (StatusParticipant) may hold a tier assignment.
type Participant struct {
	ID            int               `json:"id"`
	ProfileID     int               `json:"profile_id"`
	CompetitionID int               `json:"competition_id"`
	Status        ParticipantStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}
