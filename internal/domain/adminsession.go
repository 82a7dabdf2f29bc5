package domain

// PendingMode identifies what a pending admin action is waiting for.
type PendingMode string

const (
	// PendingCapacity waits for a new max capacity value.
	PendingCapacity PendingMode = "capacity"
	// PendingVote waits for a guest count (or leave) for a target participant.
	PendingVote PendingMode = "vote"
)

// PendingAction is the short-lived record correlating an admin's follow-up
// input with their last multi-step action. At most one is live per actor.
type PendingAction struct {
	EventID             string      `json:"event_id"`
	Mode                PendingMode `json:"mode"`
	TargetParticipantID string      `json:"target_participant_id,omitempty"`
	OriginMessageRef    string      `json:"origin_message_ref,omitempty"`
}

// AdminSessionStore holds at most one pending action per actor. Begin
// overwrites any previous pending action. Take reads and clears atomically:
// of two concurrent Takes for the same actor, exactly one succeeds. Loss on
// process restart is acceptable; in-flight flows are simply abandoned.
type AdminSessionStore interface {
	Begin(actorID string, action PendingAction)
	Take(actorID string) (PendingAction, bool)
	Cancel(actorID string)
}
