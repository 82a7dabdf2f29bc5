package domain

import "context"

// Ledger is the transactional store for events and votes. InEventTx loads
// the event row under an exclusive lock and runs fn; the transaction
// commits when fn returns nil and rolls back otherwise. Two concurrent
// calls for the same event serialize on the row lock, so a
// read-check-write sequence inside fn can never interleave with another
// voter's and jointly exceed capacity.
//
// InEventTx returns ErrEventNotFound if the event does not exist.
type Ledger interface {
	InEventTx(ctx context.Context, eventID string, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of the store available while an event row is held
// locked. Event returns the locked row as loaded at the start of the
// transaction.
type LedgerTx interface {
	Event() *Event
	Total(ctx context.Context) (int, error)
	Vote(ctx context.Context, participantID string) (*Vote, error)
	UpsertVote(ctx context.Context, vote *Vote) error
	// DeleteVote removes the participant's vote; it returns
	// ErrParticipantNotFound when no vote row exists.
	DeleteVote(ctx context.Context, participantID string) error
	SetCapacity(ctx context.Context, maxCapacity int) (*Event, error)
	SetActive(ctx context.Context, active bool) (*Event, error)
	// DeleteEvent removes the event and all its votes.
	DeleteEvent(ctx context.Context) error
}
