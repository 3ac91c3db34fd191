package clinic

import (
	"context"

	"donorlink/pkg/domain"
)

// Store persists clinics. Email and license number are unique; implementations
// return sentinel.ErrConflict when either is taken.
type Store interface {
	Create(ctx context.Context, c *Clinic) error
	FindByID(ctx context.Context, id domain.ClinicID) (*Clinic, error)
	FindByEmail(ctx context.Context, email string) (*Clinic, error)
}
