package request

import (
	"context"
	"time"

	"donorlink/pkg/domain"
)

// Store persists blood requests. Execute runs validate and mutate atomically
// under a per-request lock so concurrent lifecycle transitions serialize.
type Store interface {
	Create(ctx context.Context, r *BloodRequest) error
	FindByID(ctx context.Context, id domain.RequestID) (*BloodRequest, error)
	ListByClinic(ctx context.Context, clinicID domain.ClinicID) ([]*BloodRequest, error)
	ListActiveBefore(ctx context.Context, deadline time.Time) ([]*BloodRequest, error)
	Execute(ctx context.Context, id domain.RequestID, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error)
}
