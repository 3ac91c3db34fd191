package clinic

import (
	"context"
	"strings"
	"sync"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	clinics   map[domain.ClinicID]*Clinic
	byEmail   map[string]domain.ClinicID
	byLicense map[string]domain.ClinicID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		clinics:   make(map[domain.ClinicID]*Clinic),
		byEmail:   make(map[string]domain.ClinicID),
		byLicense: make(map[string]domain.ClinicID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := strings.ToLower(strings.TrimSpace(c.Email))
	if _, exists := s.byEmail[emailKey]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byLicense[c.LicenseNumber]; exists {
		return sentinel.ErrConflict
	}
	clone := *c
	s.clinics[c.ID] = &clone
	s.byEmail[emailKey] = c.ID
	s.byLicense[c.LicenseNumber] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ClinicID) (*Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.clinics[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.clinics[id]
	return &clone, nil
}
