package donor

import (
	"time"

	"donorlink/internal/eligibility"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
)

// PointsPerDonation is the flat award applied when a clinic confirms a
// donation. The tiered lifetime-score formulas live in internal/incentive;
// this increment is the only path that mutates stored points.
const PointsPerDonation = 100

// HealthStatus is the registration-time verdict carried on the donor record.
type HealthStatus string

const (
	HealthEligible   HealthStatus = "Eligible"
	HealthIneligible HealthStatus = "Ineligible"
)

// Donor is the aggregate root for a registered donor.
//
// Invariants:
//   - Points never decreases; it only grows through confirmed donations
//   - EligibleToDonateSince is always the confirmation time plus four months
//     whenever LastDonation is set by a confirmation
//   - BloodType is one of the 8 standard types
type Donor struct {
	ID                    domain.DonorID     `json:"id" db:"id"`
	FullName              string             `json:"full_name" db:"full_name"`
	Email                 string             `json:"email" db:"email"`
	Phone                 string             `json:"phone" db:"phone"`
	BloodType             domain.BloodType   `json:"blood_type" db:"blood_type"`
	Location              domain.Coordinates `json:"location"`
	LastDonation          *time.Time         `json:"last_donation,omitempty" db:"last_donation"`
	EligibleToDonateSince *time.Time         `json:"eligible_to_donate_since,omitempty" db:"eligible_to_donate_since"`
	TotalDonations        int                `json:"total_donations" db:"total_donations"`
	Points                int                `json:"points" db:"points"`
	HealthStatus          HealthStatus       `json:"health_status" db:"health_status"`
	CreatedAt             time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" db:"updated_at"`
}

// NewDonor validates profile fields and builds a donor record. The caller is
// responsible for having run the registration quiz; HealthStatus reflects its
// verdict.
func NewDonor(id domain.DonorID, fullName, email, phone string, bloodType domain.BloodType, location domain.Coordinates, now time.Time) (*Donor, error) {
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full name is required")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid blood type")
	}
	return &Donor{
		ID:           id,
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		BloodType:    bloodType,
		Location:     location,
		HealthStatus: HealthEligible,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanDonate reports whether the donor may donate at now: registration verdict
// still Eligible and the 90-day cooldown has lapsed.
func (d *Donor) CanDonate(now time.Time) bool {
	if d.HealthStatus != HealthEligible {
		return false
	}
	ok, _ := eligibility.CanDonateAgain(d.LastDonation, now)
	return ok
}

// NextEligibleDate returns when the donor's cooldown lapses. Zero when the
// donor has never donated.
func (d *Donor) NextEligibleDate() time.Time {
	_, next := eligibility.CanDonateAgain(d.LastDonation, time.Time{})
	return next
}

// ApplyDonation records a confirmed donation: last-donation stamp, the
// four-month next-eligible buffer, the flat point award, and the donation
// count. Call inside a store Execute callback so the update is atomic with
// respect to concurrent confirmations.
func (d *Donor) ApplyDonation(now time.Time) {
	last := now
	next := eligibility.NextEligibleAfterDonation(now)
	d.LastDonation = &last
	d.EligibleToDonateSince = &next
	d.Points += PointsPerDonation
	d.TotalDonations++
	d.UpdatedAt = now
}
