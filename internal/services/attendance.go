package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatvote/internal/domain"
)

type attendanceService struct {
	eventRepo       domain.EventRepository
	voteRepo        domain.VoteRepository
	ledger          domain.Ledger
	auth            domain.Authorizer
	defaultCapacity int
	contextTimeout  time.Duration
}

// NewAttendanceService creates the attendance engine. defaultCapacity is
// used when CreateEvent is called with a zero capacity.
func NewAttendanceService(
	eventRepo domain.EventRepository,
	voteRepo domain.VoteRepository,
	ledger domain.Ledger,
	auth domain.Authorizer,
	defaultCapacity int,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		eventRepo:       eventRepo,
		voteRepo:        voteRepo,
		ledger:          ledger,
		auth:            auth,
		defaultCapacity: defaultCapacity,
		contextTimeout:  timeout,
	}
}

func (s *attendanceService) CreateEvent(ctx context.Context, conversationID, creatorID, title string, maxCapacity int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if maxCapacity == 0 {
		maxCapacity = s.defaultCapacity
	}
	if maxCapacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	event := domain.NewEvent(conversationID, title, creatorID, maxCapacity, time.Now())
	event.ID = uuid.New().String()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *attendanceService) CastVote(ctx context.Context, eventID, participantID, displayName string, ballot domain.Ballot) (*domain.VoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !ballot.Leave && ballot.Guests < 0 {
		return nil, domain.ErrInvalidGuestCount
	}

	var result *domain.VoteResult
	err := s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		event := tx.Event()
		if !event.Active {
			return domain.ErrEventClosed
		}

		if ballot.Leave {
			if err := tx.DeleteVote(ctx, participantID); err != nil {
				if errors.Is(err, domain.ErrParticipantNotFound) {
					return domain.ErrNotParticipating
				}
				return fmt.Errorf("delete vote: %w", err)
			}
			total, err := tx.Total(ctx)
			if err != nil {
				return fmt.Errorf("sum attendance: %w", err)
			}
			result = &domain.VoteResult{Event: event, Total: total}
			return nil
		}

		oldSize := 0
		existing, err := tx.Vote(ctx, participantID)
		if err == nil {
			if existing.GuestCount == ballot.Guests {
				return domain.ErrNoChange
			}
			oldSize = existing.Size()
		} else if !errors.Is(err, domain.ErrParticipantNotFound) {
			return fmt.Errorf("get vote: %w", err)
		}

		total, err := tx.Total(ctx)
		if err != nil {
			return fmt.Errorf("sum attendance: %w", err)
		}

		newSize := 1 + ballot.Guests
		if total-oldSize+newSize > event.MaxCapacity {
			return domain.ErrCapacityExceeded
		}

		vote := &domain.Vote{
			EventID:       eventID,
			ParticipantID: participantID,
			DisplayName:   displayName,
			GuestCount:    ballot.Guests,
			UpdatedAt:     time.Now(),
		}
		if err := tx.UpsertVote(ctx, vote); err != nil {
			return fmt.Errorf("upsert vote: %w", err)
		}
		result = &domain.VoteResult{Event: event, Vote: vote, Total: total - oldSize + newSize}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdminSetVote edits a participant's vote on the admin's authority.
// Capacity is deliberately not enforced, and a closed event does not block
// the edit: closing freezes new entries, not administration.
func (s *attendanceService) AdminSetVote(ctx context.Context, eventID, adminID, targetParticipantID, targetDisplayName string, ballot domain.Ballot) (*domain.VoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !ballot.Leave && ballot.Guests < 0 {
		return nil, domain.ErrInvalidGuestCount
	}

	var result *domain.VoteResult
	err := s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		event := tx.Event()
		if err := s.requireAdmin(ctx, event, adminID); err != nil {
			return err
		}

		if ballot.Leave {
			if err := tx.DeleteVote(ctx, targetParticipantID); err != nil {
				if errors.Is(err, domain.ErrParticipantNotFound) {
					return domain.ErrParticipantNotFound
				}
				return fmt.Errorf("delete vote: %w", err)
			}
			total, err := tx.Total(ctx)
			if err != nil {
				return fmt.Errorf("sum attendance: %w", err)
			}
			result = &domain.VoteResult{Event: event, Total: total}
			return nil
		}

		displayName := targetDisplayName
		existing, err := tx.Vote(ctx, targetParticipantID)
		if err == nil {
			if displayName == "" {
				displayName = existing.DisplayName
			}
		} else if !errors.Is(err, domain.ErrParticipantNotFound) {
			return fmt.Errorf("get vote: %w", err)
		}
		if displayName == "" {
			// A brand-new entry needs a name to show on the roster.
			return domain.ErrParticipantNotFound
		}

		vote := &domain.Vote{
			EventID:       eventID,
			ParticipantID: targetParticipantID,
			DisplayName:   displayName,
			GuestCount:    ballot.Guests,
			UpdatedAt:     time.Now(),
		}
		if err := tx.UpsertVote(ctx, vote); err != nil {
			return fmt.Errorf("upsert vote: %w", err)
		}
		total, err := tx.Total(ctx)
		if err != nil {
			return fmt.Errorf("sum attendance: %w", err)
		}
		result = &domain.VoteResult{Event: event, Vote: vote, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *attendanceService) SetCapacity(ctx context.Context, eventID, adminID string, newCapacity int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if newCapacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	var updated *domain.Event
	err := s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		event := tx.Event()
		if err := s.requireAdmin(ctx, event, adminID); err != nil {
			return err
		}
		total, err := tx.Total(ctx)
		if err != nil {
			return fmt.Errorf("sum attendance: %w", err)
		}
		if newCapacity < total {
			return domain.ErrCapacityBelowCurrent
		}
		updated, err = tx.SetCapacity(ctx, newCapacity)
		if err != nil {
			return fmt.Errorf("set capacity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *attendanceService) CloseEvent(ctx context.Context, eventID, adminID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.Event
	err := s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		event := tx.Event()
		if err := s.requireAdmin(ctx, event, adminID); err != nil {
			return err
		}
		if !event.Active {
			// Closing an already-closed event is a no-op success.
			updated = event
			return nil
		}
		var err error
		updated, err = tx.SetActive(ctx, false)
		if err != nil {
			return fmt.Errorf("close event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *attendanceService) DeleteEvent(ctx context.Context, eventID, adminID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		if err := s.requireAdmin(ctx, tx.Event(), adminID); err != nil {
			return err
		}
		if err := tx.DeleteEvent(ctx); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

func (s *attendanceService) RemoveParticipant(ctx context.Context, eventID, adminID, targetParticipantID string) (*domain.VoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.VoteResult
	err := s.ledger.InEventTx(ctx, eventID, func(tx domain.LedgerTx) error {
		event := tx.Event()
		if err := s.requireAdmin(ctx, event, adminID); err != nil {
			return err
		}
		if err := tx.DeleteVote(ctx, targetParticipantID); err != nil {
			if errors.Is(err, domain.ErrParticipantNotFound) {
				return domain.ErrParticipantNotFound
			}
			return fmt.Errorf("delete vote: %w", err)
		}
		total, err := tx.Total(ctx)
		if err != nil {
			return fmt.Errorf("sum attendance: %w", err)
		}
		result = &domain.VoteResult{Event: event, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *attendanceService) CurrentTotal(ctx context.Context, eventID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return 0, domain.ErrEventNotFound
		}
		return 0, fmt.Errorf("get event: %w", err)
	}
	total, err := s.voteRepo.SumAttendance(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("sum attendance: %w", err)
	}
	return total, nil
}

func (s *attendanceService) ListVotes(ctx context.Context, eventID string) ([]*domain.Vote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	votes, err := s.voteRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	if votes == nil {
		votes = []*domain.Vote{}
	}
	return votes, nil
}

func (s *attendanceService) ListEvents(ctx context.Context, conversationID string) ([]*domain.EventWithTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventWithTotal{}
	}
	return events, nil
}

func (s *attendanceService) GetEventView(ctx context.Context, eventID, viewerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	votes, err := s.voteRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	if votes == nil {
		votes = []*domain.Vote{}
	}

	total := 0
	for _, v := range votes {
		total += v.Size()
	}
	remaining := event.MaxCapacity - total
	if remaining < 0 {
		// Admin overrides may push occupancy past capacity.
		remaining = 0
	}

	isAdmin, err := s.auth.IsEventAdmin(ctx, event, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve admin: %w", err)
	}

	return &domain.EventView{
		Event:     event,
		Votes:     votes,
		Total:     total,
		Remaining: remaining,
		IsAdmin:   isAdmin,
	}, nil
}

// requireAdmin re-validates the acting admin at call time. Authorization is
// also the caller's responsibility, but admin status can change between a
// rendered view and the action it triggers.
func (s *attendanceService) requireAdmin(ctx context.Context, event *domain.Event, actorID string) error {
	ok, err := s.auth.IsEventAdmin(ctx, event, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAuthorized
	}
	return nil
}
