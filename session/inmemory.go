package session

import "sync"

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a Store that lives only as long as the process.
type InMemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
}

// NewInMemoryStore creates a store holding the given pair.
func NewInMemoryStore(pair TokenPair) *InMemoryStore {
	return &InMemoryStore{pair: pair}
}

func (s *InMemoryStore) AccessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken, nil
}

func (s *InMemoryStore) RefreshToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.RefreshToken, nil
}

func (s *InMemoryStore) SetTokens(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
	return nil
}
