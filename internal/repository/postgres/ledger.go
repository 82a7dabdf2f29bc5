package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chatvote/internal/domain"
)

type ledger struct {
	DB *sql.DB
}

// NewLedger returns a Ledger backed by Postgres. InEventTx serializes
// concurrent mutations of the same event with a row-level lock
// (SELECT ... FOR UPDATE): a second transaction touching the same event
// blocks until the first commits or rolls back, so a capacity check and
// the write it guards always execute as one unit.
func NewLedger(db *sql.DB) domain.Ledger {
	return &ledger{
		DB: db,
	}
}

func (l *ledger) InEventTx(ctx context.Context, eventID string, fn func(tx domain.LedgerTx) error) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	query := `
		SELECT id, conversation_id, title, max_capacity, created_by, active, created_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	e := &domain.Event{}
	err = tx.QueryRowContext(ctx, query, eventID).Scan(
		&e.ID, &e.ConversationID, &e.Title, &e.MaxCapacity, &e.CreatedBy, &e.Active, &e.CreatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx, event: e}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx    *sql.Tx
	event *domain.Event
}

func (t *ledgerTx) Event() *domain.Event {
	return t.event
}

func (t *ledgerTx) Total(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(SUM(1 + guest_count), 0)
		FROM votes
		WHERE event_id = $1
	`
	var total int
	if err := t.tx.QueryRowContext(ctx, query, t.event.ID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (t *ledgerTx) Vote(ctx context.Context, participantID string) (*domain.Vote, error) {
	query := `
		SELECT event_id, participant_id, display_name, guest_count, updated_at
		FROM votes
		WHERE event_id = $1 AND participant_id = $2
	`
	v := &domain.Vote{}
	err := t.tx.QueryRowContext(ctx, query, t.event.ID, participantID).
		Scan(&v.EventID, &v.ParticipantID, &v.DisplayName, &v.GuestCount, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return v, nil
}

func (t *ledgerTx) UpsertVote(ctx context.Context, v *domain.Vote) error {
	query := `
		INSERT INTO votes (event_id, participant_id, display_name, guest_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, participant_id)
		DO UPDATE SET display_name = $3, guest_count = $4, updated_at = $5
	`
	_, err := t.tx.ExecContext(ctx, query,
		v.EventID, v.ParticipantID, v.DisplayName, v.GuestCount, v.UpdatedAt)
	return err
}

func (t *ledgerTx) DeleteVote(ctx context.Context, participantID string) error {
	query := `DELETE FROM votes WHERE event_id = $1 AND participant_id = $2`
	result, err := t.tx.ExecContext(ctx, query, t.event.ID, participantID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (t *ledgerTx) SetCapacity(ctx context.Context, maxCapacity int) (*domain.Event, error) {
	query := `UPDATE events SET max_capacity = $1 WHERE id = $2`
	if _, err := t.tx.ExecContext(ctx, query, maxCapacity, t.event.ID); err != nil {
		return nil, err
	}
	t.event.MaxCapacity = maxCapacity
	return t.event, nil
}

func (t *ledgerTx) SetActive(ctx context.Context, active bool) (*domain.Event, error) {
	query := `UPDATE events SET active = $1 WHERE id = $2`
	if _, err := t.tx.ExecContext(ctx, query, active, t.event.ID); err != nil {
		return nil, err
	}
	t.event.Active = active
	return t.event, nil
}

func (t *ledgerTx) DeleteEvent(ctx context.Context) error {
	// Votes go with the event via ON DELETE CASCADE.
	query := `DELETE FROM events WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, query, t.event.ID)
	return err
}
