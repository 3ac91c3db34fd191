package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	platformredis "donorlink/internal/platform/redis"
	"donorlink/pkg/domain"
)

// dedupeTTL bounds how long a reservation blocks a repeat send. Requests are
// short-lived, so a reservation older than this belongs to a dead request.
const dedupeTTL = 14 * 24 * time.Hour

// Dedupe reserves a (donor, request) pair before a send is attempted so that
// overlapping dispatch rounds, or multiple server instances, cannot email the
// same donor twice for one request. Reserve returns false when the pair is
// already taken.
type Dedupe interface {
	Reserve(ctx context.Context, donorID domain.DonorID, requestID domain.RequestID) (bool, error)
}

// RedisDedupe backs reservations with SET NX so the guard holds across
// processes.
type RedisDedupe struct {
	client *platformredis.Client
}

func NewRedisDedupe(client *platformredis.Client) *RedisDedupe {
	return &RedisDedupe{client: client}
}

func (d *RedisDedupe) Reserve(ctx context.Context, donorID domain.DonorID, requestID domain.RequestID) (bool, error) {
	key := dedupeKey(donorID, requestID)
	ok, err := d.client.SetNX(ctx, key, 1, dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve notification %s: %w", key, err)
	}
	return ok, nil
}

func dedupeKey(donorID domain.DonorID, requestID domain.RequestID) string {
	return fmt.Sprintf("donorlink:notify:%s:%s", requestID.String(), donorID.String())
}

// LocalDedupe is the single-process fallback used when Redis is not
// configured.
type LocalDedupe struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewLocalDedupe() *LocalDedupe {
	return &LocalDedupe{seen: make(map[string]struct{})}
}

func (d *LocalDedupe) Reserve(ctx context.Context, donorID domain.DonorID, requestID domain.RequestID) (bool, error) {
	key := dedupeKey(donorID, requestID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	d.seen[key] = struct{}{}
	return true, nil
}
