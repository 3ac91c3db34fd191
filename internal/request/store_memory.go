package request

import (
	"context"
	"sync"
	"time"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map store used in tests and when no
// database is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]*BloodRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]*BloodRequest)}
}

func (s *InMemoryStore) Create(ctx context.Context, r *BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[r.ID]; ok {
		return sentinel.ErrConflict
	}
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id domain.RequestID) (*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *InMemoryStore) ListByClinic(ctx context.Context, clinicID domain.ClinicID) ([]*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*BloodRequest
	for _, r := range s.requests {
		if r.ClinicID == clinicID {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListActiveBefore(ctx context.Context, deadline time.Time) ([]*BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*BloodRequest
	for _, r := range s.requests {
		if r.Status == StatusActive && !r.RequiredBy.After(deadline) {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

func (s *InMemoryStore) Execute(ctx context.Context, id domain.RequestID, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := cloneRequest(r)
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)

	s.requests[id] = working
	return cloneRequest(working), nil
}

func cloneRequest(r *BloodRequest) *BloodRequest {
	c := *r
	return &c
}
