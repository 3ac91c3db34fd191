package notification

import (
	"context"
	"sync"

	"donorlink/pkg/domain"
	"donorlink/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map store used in tests and when no
// database is configured.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[domain.NotificationID]*Notification
	activePair    map[pairKey]domain.NotificationID
}

type pairKey struct {
	donorID   domain.DonorID
	requestID domain.RequestID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		notifications: make(map[domain.NotificationID]*Notification),
		activePair:    make(map[pairKey]domain.NotificationID),
	}
}

func (s *InMemoryStore) CreateIfAbsent(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{donorID: n.DonorID, requestID: n.RequestID}
	if _, ok := s.activePair[key]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.notifications[n.ID]; ok {
		return sentinel.ErrConflict
	}

	s.notifications[n.ID] = clone(n)
	if n.Status.IsActive() {
		s.activePair[key] = n.ID
	}
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id domain.NotificationID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(n), nil
}

func (s *InMemoryStore) ListByRequest(ctx context.Context, requestID domain.RequestID, statuses ...Status) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Notification
	for _, n := range s.notifications {
		if n.RequestID != requestID {
			continue
		}
		if len(statuses) > 0 && !statusIn(n.Status, statuses) {
			continue
		}
		out = append(out, clone(n))
	}
	return out, nil
}

func (s *InMemoryStore) ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Notification
	for _, n := range s.notifications {
		if n.DonorID == donorID {
			out = append(out, clone(n))
		}
	}
	return out, nil
}

func (s *InMemoryStore) Execute(ctx context.Context, id domain.NotificationID, validate func(*Notification) error, mutate func(*Notification)) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := clone(n)
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)

	s.notifications[id] = working
	key := pairKey{donorID: working.DonorID, requestID: working.RequestID}
	if working.Status.IsActive() {
		s.activePair[key] = id
	} else if s.activePair[key] == id {
		delete(s.activePair, key)
	}
	return clone(working), nil
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func clone(n *Notification) *Notification {
	c := *n
	if n.SentAt != nil {
		t := *n.SentAt
		c.SentAt = &t
	}
	return &c
}
