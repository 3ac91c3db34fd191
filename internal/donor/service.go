package donor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"donorlink/internal/eligibility"
	"donorlink/internal/platform/metrics"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/sentinel"
	"donorlink/pkg/requestcontext"
)

// Service orchestrates donor registration and eligibility checks. It keeps
// quiz evaluation and store access out of handlers.
type Service struct {
	donors  Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(donors Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{donors: donors, logger: logger, metrics: m}
}

// RegisterInput is the validated registration payload: the profile plus the
// one-shot eligibility quiz.
type RegisterInput struct {
	FullName  string
	Email     string
	Phone     string
	BloodType domain.BloodType
	Location  domain.Coordinates
	Quiz      eligibility.QuizAnswers
}

// Register evaluates the quiz and creates the donor. Ineligible answers are a
// validation failure carrying the rule that failed; the donor record is only
// created for eligible registrants.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Donor, error) {
	verdict := eligibility.EvaluateRegistration(in.Quiz)
	if !verdict.Eligible {
		return nil, dErrors.New(dErrors.CodeValidation, string(verdict.Reason))
	}

	now := requestcontext.Now(ctx)
	d, err := NewDonor(domain.NewDonorID(), in.FullName, in.Email, in.Phone, in.BloodType, in.Location, now)
	if err != nil {
		return nil, err
	}

	if err := s.donors.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a donor with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor")
	}

	s.metrics.IncDonorsRegistered()
	s.logger.InfoContext(ctx, "donor registered",
		"donor_id", d.ID.String(),
		"blood_type", d.BloodType.String(),
	)
	return d, nil
}

// EligibilityResult reports whether a donor may donate now, and if not, when.
type EligibilityResult struct {
	Eligible         bool       `json:"eligible"`
	NextEligibleDate *time.Time `json:"next_eligible_date,omitempty"`
}

// CheckEligibility evaluates the post-donation cooldown for an existing donor.
func (s *Service) CheckEligibility(ctx context.Context, id domain.DonorID) (EligibilityResult, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return EligibilityResult{}, err
	}

	now := requestcontext.Now(ctx)
	if d.HealthStatus != HealthEligible {
		return EligibilityResult{}, nil
	}
	ok, next := eligibility.CanDonateAgain(d.LastDonation, now)
	if ok {
		return EligibilityResult{Eligible: true}, nil
	}
	return EligibilityResult{NextEligibleDate: &next}, nil
}

// Get fetches a donor, translating a missing record into NotFound.
func (s *Service) Get(ctx context.Context, id domain.DonorID) (*Donor, error) {
	d, err := s.donors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch donor")
	}
	return d, nil
}
