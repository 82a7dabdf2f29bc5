package postgres

import (
	"context"
	"database/sql"
	"errors"

	"chatvote/internal/domain"
)

type voteRepository struct {
	DB *sql.DB
}

func NewVoteRepository(db *sql.DB) domain.VoteRepository {
	return &voteRepository{
		DB: db,
	}
}

func (r *voteRepository) GetByEventAndParticipant(ctx context.Context, eventID, participantID string) (*domain.Vote, error) {
	query := `
		SELECT event_id, participant_id, display_name, guest_count, updated_at
		FROM votes
		WHERE event_id = $1 AND participant_id = $2
	`
	v := &domain.Vote{}
	err := r.DB.QueryRowContext(ctx, query, eventID, participantID).
		Scan(&v.EventID, &v.ParticipantID, &v.DisplayName, &v.GuestCount, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *voteRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Vote, error) {
	query := `
		SELECT event_id, participant_id, display_name, guest_count, updated_at
		FROM votes
		WHERE event_id = $1
		ORDER BY updated_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		v := &domain.Vote{}
		if err := rows.Scan(&v.EventID, &v.ParticipantID, &v.DisplayName, &v.GuestCount, &v.UpdatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *voteRepository) SumAttendance(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(1 + guest_count), 0)
		FROM votes
		WHERE event_id = $1
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
