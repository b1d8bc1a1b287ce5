package usecase

import (
	"context"
	"sync"

	"github.com/scentpair/backend/internal/domain"
)

// SearchFunc runs one search under the given context
type SearchFunc func(ctx context.Context) ([]domain.SearchHit, error)

type activeSearch struct {
	token  uint64
	cancel context.CancelFunc
}

// SearchSessions tracks the in-flight search of each client session. Starting
// a search cancels the previous one of the same session, and a search that was
// replaced reports ErrSuperseded instead of its results.
type SearchSessions struct {
	mu     sync.Mutex
	active map[string]*activeSearch
	next   uint64
}

// NewSearchSessions creates an empty session registry
func NewSearchSessions() *SearchSessions {
	return &SearchSessions{active: make(map[string]*activeSearch)}
}

// Run executes search for session. An empty session id runs the search untracked.
func (s *SearchSessions) Run(ctx context.Context, session string, search SearchFunc) ([]domain.SearchHit, error) {
	if session == "" {
		return search(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	token := s.start(session, cancel)
	defer s.finish(session, token)

	hits, err := search(ctx)
	if s.superseded(session, token) {
		return nil, domain.ErrSuperseded
	}
	return hits, err
}

// InFlight returns the number of sessions with a running search
func (s *SearchSessions) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *SearchSessions) start(session string, cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	if prev, ok := s.active[session]; ok {
		prev.cancel()
	}
	s.active[session] = &activeSearch{token: s.next, cancel: cancel}
	return s.next
}

func (s *SearchSessions) superseded(session string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.active[session]
	return !ok || current.token != token
}

func (s *SearchSessions) finish(session string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.active[session]; ok && current.token == token {
		current.cancel()
		delete(s.active, session)
	}
}
