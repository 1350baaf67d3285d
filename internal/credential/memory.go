package credential

import (
	"context" // Request contexts
	"sync"    // Locking
	"time"    // Timeouts and clocks
)

// MemoryStore keeps the credential for the life of the process
type MemoryStore struct {
	mu   sync.RWMutex
	cred *Credential
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil || s.cred.Expired(s.now()) {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, c Credential) error {
	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return nil
}
