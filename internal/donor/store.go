package donor

import (
	"context"

	"donorlink/pkg/domain"
)

// Store persists donors. Implementations return sentinel errors
// (pkg/platform/sentinel) for infrastructure facts; services translate them.
type Store interface {
	// Create inserts a donor. ErrConflict when the email is already taken.
	Create(ctx context.Context, d *Donor) error
	FindByID(ctx context.Context, id domain.DonorID) (*Donor, error)
	FindByEmail(ctx context.Context, email string) (*Donor, error)
	// List returns all donors. The matching engine scans and filters this
	// set; proximity pre-filtering is an implementation option, not part of
	// the contract.
	List(ctx context.Context) ([]*Donor, error)
	// Execute atomically runs validate then mutate against the stored donor,
	// holding the store's lock (mutex or FOR UPDATE) across both so
	// concurrent donation confirmations cannot lose updates. Returns the
	// mutated donor.
	Execute(ctx context.Context, id domain.DonorID, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error)
}
