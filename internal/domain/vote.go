package domain

import (
	"context"
	"time"
)

// Vote is one participant's attendance declaration for an event. A
// participant has at most one vote row per event.
// swagger:model Vote
type Vote struct {
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	GuestCount    int       `json:"guest_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Size is the number of seats this vote occupies: the participant plus
// their guests.
func (v *Vote) Size() int {
	return 1 + v.GuestCount
}

// Ballot is a requested attendance change: either a guest count or a
// request to leave the event.
type Ballot struct {
	Leave  bool
	Guests int
}

// GuestBallot returns a ballot declaring attendance with n extra guests.
func GuestBallot(n int) Ballot {
	return Ballot{Guests: n}
}

// LeaveBallot returns a ballot withdrawing the participant's vote.
func LeaveBallot() Ballot {
	return Ballot{Leave: true}
}

// VoteResult reports the outcome of a vote mutation. Vote is nil when the
// participant left the event.
// swagger:model VoteResult
type VoteResult struct {
	Event *Event `json:"event"`
	Vote  *Vote  `json:"vote"`
	Total int    `json:"total"`
}

// VoteRepository defines non-transactional storage reads for votes.
type VoteRepository interface {
	GetByEventAndParticipant(ctx context.Context, eventID, participantID string) (*Vote, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Vote, error)
	SumAttendance(ctx context.Context, eventID string) (int, error)
}
