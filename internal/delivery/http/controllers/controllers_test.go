package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatvote/internal/delivery/http/helpers"
	"chatvote/internal/delivery/http/middleware"
	"chatvote/internal/domain"
)

// mockService lets each test stub only the methods its handler calls.
type mockService struct {
	createEvent       func(ctx context.Context, conversationID, creatorID, title string, maxCapacity int) (*domain.Event, error)
	castVote          func(ctx context.Context, eventID, participantID, displayName string, ballot domain.Ballot) (*domain.VoteResult, error)
	adminSetVote      func(ctx context.Context, eventID, adminID, targetParticipantID, targetDisplayName string, ballot domain.Ballot) (*domain.VoteResult, error)
	setCapacity       func(ctx context.Context, eventID, adminID string, newCapacity int) (*domain.Event, error)
	closeEvent        func(ctx context.Context, eventID, adminID string) (*domain.Event, error)
	deleteEvent       func(ctx context.Context, eventID, adminID string) error
	removeParticipant func(ctx context.Context, eventID, adminID, targetParticipantID string) (*domain.VoteResult, error)
	currentTotal      func(ctx context.Context, eventID string) (int, error)
	listVotes         func(ctx context.Context, eventID string) ([]*domain.Vote, error)
	listEvents        func(ctx context.Context, conversationID string) ([]*domain.EventWithTotal, error)
	getEventView      func(ctx context.Context, eventID, viewerID string) (*domain.EventView, error)
}

func (m *mockService) CreateEvent(ctx context.Context, conversationID, creatorID, title string, maxCapacity int) (*domain.Event, error) {
	return m.createEvent(ctx, conversationID, creatorID, title, maxCapacity)
}

func (m *mockService) CastVote(ctx context.Context, eventID, participantID, displayName string, ballot domain.Ballot) (*domain.VoteResult, error) {
	return m.castVote(ctx, eventID, participantID, displayName, ballot)
}

func (m *mockService) AdminSetVote(ctx context.Context, eventID, adminID, targetParticipantID, targetDisplayName string, ballot domain.Ballot) (*domain.VoteResult, error) {
	return m.adminSetVote(ctx, eventID, adminID, targetParticipantID, targetDisplayName, ballot)
}

func (m *mockService) SetCapacity(ctx context.Context, eventID, adminID string, newCapacity int) (*domain.Event, error) {
	return m.setCapacity(ctx, eventID, adminID, newCapacity)
}

func (m *mockService) CloseEvent(ctx context.Context, eventID, adminID string) (*domain.Event, error) {
	return m.closeEvent(ctx, eventID, adminID)
}

func (m *mockService) DeleteEvent(ctx context.Context, eventID, adminID string) error {
	return m.deleteEvent(ctx, eventID, adminID)
}

func (m *mockService) RemoveParticipant(ctx context.Context, eventID, adminID, targetParticipantID string) (*domain.VoteResult, error) {
	return m.removeParticipant(ctx, eventID, adminID, targetParticipantID)
}

func (m *mockService) CurrentTotal(ctx context.Context, eventID string) (int, error) {
	return m.currentTotal(ctx, eventID)
}

func (m *mockService) ListVotes(ctx context.Context, eventID string) ([]*domain.Vote, error) {
	return m.listVotes(ctx, eventID)
}

func (m *mockService) ListEvents(ctx context.Context, conversationID string) ([]*domain.EventWithTotal, error) {
	return m.listEvents(ctx, conversationID)
}

func (m *mockService) GetEventView(ctx context.Context, eventID, viewerID string) (*domain.EventView, error) {
	return m.getEventView(ctx, eventID, viewerID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newActorRequest builds a request authenticated as the given actor, with
// path values set the way the router's patterns would.
func newActorRequest(method, target, body, actorID, displayName string, pathValues map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	r = r.WithContext(middleware.SetActor(r.Context(), actorID, displayName))
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Fatalf("expected status %d, got %d (%s)", wantStatus, w.Code, w.Body.String())
	}
	envelope := decodeEnvelope(t, w)
	if envelope.Error == nil {
		t.Fatal("expected an error in the response envelope")
	}
	if envelope.Error.Code != wantCode {
		t.Fatalf("expected error code %s, got %s", wantCode, envelope.Error.Code)
	}
}
