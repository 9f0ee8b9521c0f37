package credential

import (
	"context"
	"net/http"
	"sync"
)

// MemoryStore keeps a single credential in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
}

// NewMemoryStore creates a MemoryStore holding cred. A zero credential means
// nothing is stored.
func NewMemoryStore(cred Credential) *MemoryStore {
	return &MemoryStore{cred: cred}
}

// Get returns the stored credential or ErrNotFound
func (s *MemoryStore) Get(_ context.Context) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.cred.Present() {
		return Credential{}, ErrNotFound
	}
	return s.cred, nil
}

// Set replaces the stored credential
func (s *MemoryStore) Set(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}

// Clear removes the stored credential
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	return nil
}

// MemoryProvider hands every request the same MemoryStore. It suits a
// single-user kiosk and tests; it must not back a multi-user deployment.
type MemoryProvider struct {
	Store *MemoryStore
}

// NewMemoryProvider creates a provider over an empty MemoryStore
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{Store: NewMemoryStore(Credential{})}
}

// Open returns the shared store
func (p *MemoryProvider) Open(http.ResponseWriter, *http.Request) Store {
	return p.Store
}
