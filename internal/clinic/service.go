package clinic

import (
	"context"
	"errors"
	"log/slog"

	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/sentinel"
	"donorlink/pkg/requestcontext"
)

// Service handles clinic registration and lookup.
type Service struct {
	clinics Store
	logger  *slog.Logger
}

func NewService(clinics Store, logger *slog.Logger) *Service {
	return &Service{clinics: clinics, logger: logger}
}

// RegisterInput is the validated clinic registration payload. CredentialHash
// arrives pre-hashed from the identity boundary.
type RegisterInput struct {
	Name           string
	Email          string
	Phone          string
	LicenseNumber  string
	Location       domain.Coordinates
	CredentialHash string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Clinic, error) {
	now := requestcontext.Now(ctx)
	c, err := NewClinic(domain.NewClinicID(), in.Name, in.Email, in.Phone, in.LicenseNumber, in.CredentialHash, in.Location, now)
	if err != nil {
		return nil, err
	}

	if err := s.clinics.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a clinic with this email or license already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create clinic")
	}

	s.logger.InfoContext(ctx, "clinic registered", "clinic_id", c.ID.String(), "name", c.Name)
	return c, nil
}

// GetByEmail fetches a clinic by login email, translating a missing record
// into NotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Clinic, error) {
	c, err := s.clinics.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch clinic")
	}
	return c, nil
}

// Get fetches a clinic, translating a missing record into NotFound.
func (s *Service) Get(ctx context.Context, id domain.ClinicID) (*Clinic, error) {
	c, err := s.clinics.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch clinic")
	}
	return c, nil
}
