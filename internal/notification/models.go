package notification

import (
	"time"

	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
)

// Status tracks a notification from dispatch through donor and clinic action.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusInterested Status = "interested"
	StatusDonated    Status = "donated"
)

// ActiveStatuses are the states in which a (donor, request) pair counts as
// having a live notification; the store's uniqueness guarantee applies to
// these.
var ActiveStatuses = []Status{StatusPending, StatusSent, StatusInterested}

func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusSent, StatusInterested:
		return true
	}
	return false
}

// Notification mediates one donor's candidacy for one blood request.
//
// Invariants:
//   - At most one active notification exists per (donor, request) pair
//   - donated and failed are terminal
type Notification struct {
	ID        domain.NotificationID `json:"id" db:"id"`
	DonorID   domain.DonorID        `json:"donor_id" db:"donor_id"`
	ClinicID  domain.ClinicID       `json:"clinic_id" db:"clinic_id"`
	RequestID domain.RequestID      `json:"request_id" db:"request_id"`
	Email     string                `json:"email" db:"email"`
	Subject   string                `json:"subject" db:"subject"`
	Message   string                `json:"message" db:"message"`
	Status    Status                `json:"status" db:"status"`
	SentAt    *time.Time            `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt time.Time             `json:"updated_at" db:"updated_at"`
}

// CanMarkInterested checks the donor-response transition. Only a delivered
// notification can collect interest.
func (n *Notification) CanMarkInterested() error {
	if n.Status != StatusSent {
		return dErrors.New(dErrors.CodeInvariantViolation, "only a sent notification can be marked interested")
	}
	return nil
}

// ApplyInterested records the donor's interest. Call CanMarkInterested first.
func (n *Notification) ApplyInterested(now time.Time) {
	n.Status = StatusInterested
	n.UpdatedAt = now
}

// CanMarkDonated checks the clinic-confirmation transition.
func (n *Notification) CanMarkDonated() error {
	if !n.Status.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "notification is not active")
	}
	return nil
}

// ApplyDonated records the confirmed donation. Call CanMarkDonated first.
func (n *Notification) ApplyDonated(now time.Time) {
	n.Status = StatusDonated
	n.UpdatedAt = now
}

// ApplySent records successful delivery.
func (n *Notification) ApplySent(now time.Time) {
	n.Status = StatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

// ApplyFailed marks the notification dead, either because delivery failed or
// because the request was cancelled.
func (n *Notification) ApplyFailed(now time.Time) {
	n.Status = StatusFailed
	n.UpdatedAt = now
}
