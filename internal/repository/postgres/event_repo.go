package postgres

import (
	"context"
	"database/sql"
	"errors"

	"chatvote/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, conversation_id, title, max_capacity, created_by, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.ConversationID, e.Title, e.MaxCapacity, e.CreatedBy, e.Active, e.CreatedAt)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, conversation_id, title, max_capacity, created_by, active, created_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.ConversationID, &e.Title, &e.MaxCapacity, &e.CreatedBy, &e.Active, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.EventWithTotal, error) {
	query := `
		SELECT e.id, e.conversation_id, e.title, e.max_capacity, e.created_by, e.active, e.created_at,
		       COALESCE(SUM(1 + v.guest_count), 0) AS total
		FROM events e
		LEFT JOIN votes v ON v.event_id = e.id
		WHERE e.conversation_id = $1
		GROUP BY e.id, e.conversation_id, e.title, e.max_capacity, e.created_by, e.active, e.created_at
		ORDER BY e.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.EventWithTotal, 0)
	for rows.Next() {
		e := &domain.Event{}
		var total int
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.Title, &e.MaxCapacity, &e.CreatedBy, &e.Active, &e.CreatedAt, &total); err != nil {
			return nil, err
		}
		events = append(events, &domain.EventWithTotal{Event: e, Total: total})
	}
	return events, rows.Err()
}
