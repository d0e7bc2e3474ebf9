package workspace

import "sync"

// entry is a user's workspace plus the bookkeeping that orders async writes.
type entry struct {
	state State
	// resumeGen increments on every resume write; an ingestion applies only
	// if it is still the latest.
	resumeGen uint64
	// analysisGen increments when a run starts or the entry is reset.
	analysisGen uint64
}

// Store keeps one entry per user in memory.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// with runs fn under the store lock with the user's entry, creating it if needed.
func (s *Store) with(userID string, fn func(e *entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	fn(e)
}

// current runs fn only if e is still the user's live entry.
func (s *Store) current(userID string, e *entry, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[userID] != e {
		return false
	}
	fn()
	return true
}

// Get returns a copy of the user's state.
func (s *Store) Get(userID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		return e.state.clone()
	}
	return State{}
}

// Delete drops the user's entry. In-flight work for it is discarded.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		e.resumeGen++
		e.analysisGen++
		delete(s.entries, userID)
	}
}

// Len reports how many users have a workspace.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
