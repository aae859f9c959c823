package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryLeaseStore hands out leases from a process-local map.
// Leases do not span processes; use it for a single instance and in tests.
type InMemoryLeaseStore struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

// NewInMemoryLeaseStore creates a new in-memory lease store
func NewInMemoryLeaseStore() *InMemoryLeaseStore {
	return &InMemoryLeaseStore{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

// Acquire takes the named lease for ttl. An expired lease is taken over.
func (s *InMemoryLeaseStore) Acquire(_ context.Context, name string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if current, exists := s.leases[name]; exists && now.Before(current.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	s.leases[name] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release gives the lease back if token still owns it
func (s *InMemoryLeaseStore) Release(_ context.Context, name, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.leases[name]
	if !exists || current.token != token || !s.now().Before(current.expiresAt) {
		return ErrLeaseNotHeld
	}
	delete(s.leases, name)
	return nil
}

// Close implements io.Closer
func (s *InMemoryLeaseStore) Close() error {
	return nil
}

// Size returns the number of live leases (for testing/monitoring)
func (s *InMemoryLeaseStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, l := range s.leases {
		if now.Before(l.expiresAt) {
			count++
		}
	}
	return count
}
