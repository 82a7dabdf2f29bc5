package memory

import (
	"sync"

	"chatvote/internal/domain"
)

type adminSessionStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingAction
}

// NewAdminSessionStore returns an in-process AdminSessionStore. Entries are
// lost on restart; any multi-step admin flow in flight at that point must
// be restarted by the actor.
func NewAdminSessionStore() domain.AdminSessionStore {
	return &adminSessionStore{
		pending: make(map[string]domain.PendingAction),
	}
}

func (s *adminSessionStore) Begin(actorID string, action domain.PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[actorID] = action
}

// Take reads and clears the actor's pending action under one lock, so a
// double-submitted follow-up reply resolves exactly once.
func (s *adminSessionStore) Take(actorID string) (domain.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.pending[actorID]
	if ok {
		delete(s.pending, actorID)
	}
	return action, ok
}

func (s *adminSessionStore) Cancel(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, actorID)
}
