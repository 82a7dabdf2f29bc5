package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"chatvote/internal/domain"
)

// fakeStore backs EventRepository, VoteRepository, and Ledger with in-memory
// maps. InEventTx holds one mutex for the whole callback, which is at least
// as strict as the row lock the Postgres ledger takes.
type fakeStore struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	votes  map[string]map[string]*domain.Vote
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[string]*domain.Event),
		votes:  make(map[string]map[string]*domain.Vote),
	}
}

func (f *fakeStore) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.events[e.ID] = &cp
	f.votes[e.ID] = make(map[string]*domain.Vote)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) ListByConversation(ctx context.Context, conversationID string) ([]*domain.EventWithTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.EventWithTotal
	for id, e := range f.events {
		if e.ConversationID != conversationID {
			continue
		}
		total := 0
		for _, v := range f.votes[id] {
			total += v.Size()
		}
		cp := *e
		out = append(out, &domain.EventWithTotal{Event: &cp, Total: total})
	}
	return out, nil
}

func (f *fakeStore) GetByEventAndParticipant(ctx context.Context, eventID, participantID string) (*domain.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.votes[eventID][participantID]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeStore) ListByEventID(ctx context.Context, eventID string) ([]*domain.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Vote
	for _, v := range f.votes[eventID] {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) SumAttendance(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, v := range f.votes[eventID] {
		total += v.Size()
	}
	return total, nil
}

func (f *fakeStore) InEventTx(ctx context.Context, eventID string, fn func(tx domain.LedgerTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	return fn(&fakeTx{store: f, event: e})
}

type fakeTx struct {
	store *fakeStore
	event *domain.Event
}

func (t *fakeTx) Event() *domain.Event { return t.event }

func (t *fakeTx) Total(ctx context.Context) (int, error) {
	total := 0
	for _, v := range t.store.votes[t.event.ID] {
		total += v.Size()
	}
	return total, nil
}

func (t *fakeTx) Vote(ctx context.Context, participantID string) (*domain.Vote, error) {
	v, ok := t.store.votes[t.event.ID][participantID]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	cp := *v
	return &cp, nil
}

func (t *fakeTx) UpsertVote(ctx context.Context, v *domain.Vote) error {
	cp := *v
	t.store.votes[t.event.ID][v.ParticipantID] = &cp
	return nil
}

func (t *fakeTx) DeleteVote(ctx context.Context, participantID string) error {
	if _, ok := t.store.votes[t.event.ID][participantID]; !ok {
		return domain.ErrParticipantNotFound
	}
	delete(t.store.votes[t.event.ID], participantID)
	return nil
}

func (t *fakeTx) SetCapacity(ctx context.Context, maxCapacity int) (*domain.Event, error) {
	t.event.MaxCapacity = maxCapacity
	cp := *t.event
	return &cp, nil
}

func (t *fakeTx) SetActive(ctx context.Context, active bool) (*domain.Event, error) {
	t.event.Active = active
	cp := *t.event
	return &cp, nil
}

func (t *fakeTx) DeleteEvent(ctx context.Context) error {
	delete(t.store.events, t.event.ID)
	delete(t.store.votes, t.event.ID)
	return nil
}

// fakeMembers implements the platform capability with a fixed set of
// privileged actors.
type fakeMembers struct {
	privileged map[string]bool
	err        error
}

func (f *fakeMembers) IsPrivilegedMember(ctx context.Context, conversationID, actorID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.privileged[actorID], nil
}

func newTestService(store *fakeStore, privileged ...string) domain.AttendanceService {
	members := &fakeMembers{privileged: make(map[string]bool)}
	for _, p := range privileged {
		members.privileged[p] = true
	}
	return NewAttendanceService(store, store, store, NewAuthorizer(members), 12, 5*time.Second)
}

func mustCreate(t *testing.T, svc domain.AttendanceService, capacity int) *domain.Event {
	t.Helper()
	event, err := svc.CreateEvent(context.Background(), "conv-1", "creator", "Soccer", capacity)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func TestCreateEvent_Validation(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.CreateEvent(ctx, "conv-1", "creator", "   ", 5); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := svc.CreateEvent(ctx, "conv-1", "creator", "Soccer", -3); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestCreateEvent_DefaultCapacity(t *testing.T) {
	svc := newTestService(newFakeStore())

	event, err := svc.CreateEvent(context.Background(), "conv-1", "creator", "Soccer", 0)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.MaxCapacity != 12 {
		t.Fatalf("expected default capacity 12, got %d", event.MaxCapacity)
	}
	if !event.Active {
		t.Fatal("expected new event to be active")
	}
	if event.ID == "" {
		t.Fatal("expected event id to be assigned")
	}
}

func TestCreateEvent_RoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 10)

	events, err := svc.ListEvents(ctx, "conv-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Total != 0 {
		t.Fatalf("expected one event with total 0, got %+v", events)
	}

	if _, err := svc.CastVote(ctx, event.ID, "alice", "Alice", domain.GuestBallot(2)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	total, err := svc.CurrentTotal(ctx, event.ID)
	if err != nil {
		t.Fatalf("current total: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
}

func TestCastVote_EventNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.CastVote(context.Background(), "missing", "alice", "Alice", domain.GuestBallot(0))
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestCastVote_CapacityBoundary(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 3)

	result, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(0))
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected total 1, got %d", result.Total)
	}

	// B with two guests would make 4 > 3.
	_, err = svc.CastVote(ctx, event.ID, "b", "B", domain.GuestBallot(2))
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	total, _ := svc.CurrentTotal(ctx, event.ID)
	if total != 1 {
		t.Fatalf("expected total unchanged at 1, got %d", total)
	}
}

func TestCastVote_ResizeUsesOwnSeats(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 4)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(3)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	// Shrinking from 4 seats to 2 must pass even though the event is full.
	result, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1))
	if err != nil {
		t.Fatalf("resize vote: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
}

func TestCastVote_NoChange(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	_, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1))
	if !errors.Is(err, domain.ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	votes, err := svc.ListVotes(ctx, event.ID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected a single vote row, got %d", len(votes))
	}
}

func TestCastVote_LeaveAndRejoin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	result, err := svc.CastVote(ctx, event.ID, "a", "A", domain.LeaveBallot())
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected total 0 after leave, got %d", result.Total)
	}

	_, err = svc.CastVote(ctx, event.ID, "a", "A", domain.LeaveBallot())
	if !errors.Is(err, domain.ErrNotParticipating) {
		t.Fatalf("expected ErrNotParticipating on repeat leave, got %v", err)
	}
}

func TestCastVote_ClosedEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CloseEvent(ctx, event.ID, "creator"); err != nil {
		t.Fatalf("close event: %v", err)
	}
	_, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(0))
	if !errors.Is(err, domain.ErrEventClosed) {
		t.Fatalf("expected ErrEventClosed, got %v", err)
	}

	// Admin edits still work on a closed event.
	if _, err := svc.AdminSetVote(ctx, event.ID, "creator", "a", "A", domain.GuestBallot(0)); err != nil {
		t.Fatalf("admin set vote on closed event: %v", err)
	}
}

func TestCastVote_Concurrent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, p := range []string{"a", "b"} {
		wg.Add(1)
		go func(participant string) {
			defer wg.Done()
			_, err := svc.CastVote(ctx, event.ID, participant, participant, domain.GuestBallot(0))
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)

	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrCapacityExceeded):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Fatalf("expected exactly one success and one capacity rejection, got ok=%d full=%d", ok, full)
	}
	total, _ := svc.CurrentTotal(ctx, event.ID)
	if total != 1 {
		t.Fatalf("expected final total 1, got %d", total)
	}
}

func TestAdminSetVote_OverridesCapacity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 2)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	// Intentional capacity override: the admin path does not enforce the
	// limit, so the total may exceed max capacity afterwards.
	result, err := svc.AdminSetVote(ctx, event.ID, "creator", "b", "B", domain.GuestBallot(3))
	if err != nil {
		t.Fatalf("admin set vote: %v", err)
	}
	if result.Total != 6 {
		t.Fatalf("expected total 6 after override, got %d", result.Total)
	}
}

func TestAdminSetVote_NotAuthorized(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	_, err := svc.AdminSetVote(ctx, event.ID, "rando", "a", "A", domain.GuestBallot(0))
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestAdminSetVote_PrivilegedMember(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, "mod")
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.AdminSetVote(ctx, event.ID, "mod", "a", "A", domain.GuestBallot(1)); err != nil {
		t.Fatalf("admin set vote by privileged member: %v", err)
	}
}

func TestAdminSetVote_NewEntryNeedsName(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	_, err := svc.AdminSetVote(ctx, event.ID, "creator", "ghost", "", domain.GuestBallot(0))
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestSetCapacity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(2)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	if _, err := svc.SetCapacity(ctx, event.ID, "creator", 0); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
	if _, err := svc.SetCapacity(ctx, event.ID, "creator", 2); !errors.Is(err, domain.ErrCapacityBelowCurrent) {
		t.Fatalf("expected ErrCapacityBelowCurrent, got %v", err)
	}
	if _, err := svc.SetCapacity(ctx, event.ID, "rando", 10); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	updated, err := svc.SetCapacity(ctx, event.ID, "creator", 10)
	if err != nil {
		t.Fatalf("set capacity: %v", err)
	}
	if updated.MaxCapacity != 10 {
		t.Fatalf("expected capacity 10, got %d", updated.MaxCapacity)
	}
}

func TestCloseEvent_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	first, err := svc.CloseEvent(ctx, event.ID, "creator")
	if err != nil {
		t.Fatalf("close event: %v", err)
	}
	if first.Active {
		t.Fatal("expected event to be inactive after close")
	}
	second, err := svc.CloseEvent(ctx, event.ID, "creator")
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if second.Active {
		t.Fatal("expected repeat close to stay inactive")
	}
}

func TestDeleteEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if err := svc.DeleteEvent(ctx, event.ID, "rando"); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.DeleteEvent(ctx, event.ID, "creator"); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if err := svc.DeleteEvent(ctx, event.ID, "creator"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound on repeat delete, got %v", err)
	}
	if _, err := svc.CurrentTotal(ctx, event.ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound after delete, got %v", err)
	}
}

func TestRemoveParticipant(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(1)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	_, err := svc.RemoveParticipant(ctx, event.ID, "creator", "ghost")
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}

	result, err := svc.RemoveParticipant(ctx, event.ID, "creator", "a")
	if err != nil {
		t.Fatalf("remove participant: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected total 0 after removal, got %d", result.Total)
	}
}

func TestListVotes_OrderedByUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 10)

	for _, p := range []string{"a", "b", "c"} {
		if _, err := svc.CastVote(ctx, event.ID, p, p, domain.GuestBallot(0)); err != nil {
			t.Fatalf("cast vote %s: %v", p, err)
		}
		time.Sleep(time.Millisecond)
	}

	votes, err := svc.ListVotes(ctx, event.ID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 3 {
		t.Fatalf("expected 3 votes, got %d", len(votes))
	}
	for i, p := range []string{"a", "b", "c"} {
		if votes[i].ParticipantID != p {
			t.Fatalf("expected vote %d to be %s, got %s", i, p, votes[i].ParticipantID)
		}
	}
}

func TestGetEventView(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	event := mustCreate(t, svc, 5)

	if _, err := svc.CastVote(ctx, event.ID, "a", "A", domain.GuestBallot(2)); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	view, err := svc.GetEventView(ctx, event.ID, "creator")
	if err != nil {
		t.Fatalf("get event view: %v", err)
	}
	if view.Total != 3 || view.Remaining != 2 {
		t.Fatalf("expected total 3 remaining 2, got total=%d remaining=%d", view.Total, view.Remaining)
	}
	if !view.IsAdmin {
		t.Fatal("expected creator to be admin in view")
	}

	view, err = svc.GetEventView(ctx, event.ID, "a")
	if err != nil {
		t.Fatalf("get event view: %v", err)
	}
	if view.IsAdmin {
		t.Fatal("expected plain participant not to be admin in view")
	}
}
