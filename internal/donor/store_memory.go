package donor

import (
	"context"
	"strings"
	"sync"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

// InMemoryStore is the default store for development and tests. It enforces
// the same contract as the PostgreSQL store, including email uniqueness and
// atomic Execute.
type InMemoryStore struct {
	mu      sync.RWMutex
	donors  map[domain.DonorID]*Donor
	byEmail map[string]domain.DonorID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		donors:  make(map[domain.DonorID]*Donor),
		byEmail: make(map[string]domain.DonorID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, d *Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(d.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *d
	s.donors[d.ID] = &clone
	s.byEmail[key] = d.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.DonorID) (*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.donors[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[emailKey(email)]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.donors[id]
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Donor, 0, len(s.donors))
	for _, d := range s.donors {
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) Execute(_ context.Context, id domain.DonorID, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.donors[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return nil, err
		}
	}
	mutate(d)
	clone := *d
	return &clone, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
