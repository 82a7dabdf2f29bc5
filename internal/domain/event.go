package domain

import (
	"context"
	"time"
)

// Event is a capacity-bounded attendance roster tied to a conversation.
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	MaxCapacity    int       `json:"max_capacity"`
	CreatedBy      string    `json:"created_by"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewEvent returns a new Event. ID is assigned by the service on create.
func NewEvent(conversationID, title, createdBy string, maxCapacity int, createdAt time.Time) *Event {
	return &Event{
		ConversationID: conversationID,
		Title:          title,
		MaxCapacity:    maxCapacity,
		CreatedBy:      createdBy,
		Active:         true,
		CreatedAt:      createdAt,
	}
}

// EventWithTotal bundles an event with its computed attendance total.
// swagger:model EventWithTotal
type EventWithTotal struct {
	Event *Event `json:"event"`
	Total int    `json:"total"`
}

// EventView is the presentation contract: everything a renderer needs to
// draw one event summary and decide which actions to offer the viewer.
// swagger:model EventView
type EventView struct {
	Event     *Event  `json:"event"`
	Votes     []*Vote `json:"votes"`
	Total     int     `json:"total"`
	Remaining int     `json:"remaining"`
	IsAdmin   bool    `json:"is_admin"`
}

// EventRepository defines non-transactional storage reads and the initial
// insert for events. Mutations that must observe the capacity invariant go
// through Ledger instead.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*EventWithTotal, error)
}

// AttendanceService owns the event lifecycle and all vote accounting.
// Privileged operations take the acting admin's id and re-validate
// authorization at call time.
type AttendanceService interface {
	CreateEvent(ctx context.Context, conversationID, creatorID, title string, maxCapacity int) (*Event, error)
	CastVote(ctx context.Context, eventID, participantID, displayName string, ballot Ballot) (*VoteResult, error)
	AdminSetVote(ctx context.Context, eventID, adminID, targetParticipantID, targetDisplayName string, ballot Ballot) (*VoteResult, error)
	SetCapacity(ctx context.Context, eventID, adminID string, newCapacity int) (*Event, error)
	CloseEvent(ctx context.Context, eventID, adminID string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, adminID string) error
	RemoveParticipant(ctx context.Context, eventID, adminID, targetParticipantID string) (*VoteResult, error)
	CurrentTotal(ctx context.Context, eventID string) (int, error)
	ListVotes(ctx context.Context, eventID string) ([]*Vote, error)
	ListEvents(ctx context.Context, conversationID string) ([]*EventWithTotal, error)
	GetEventView(ctx context.Context, eventID, viewerID string) (*EventView, error)
}
