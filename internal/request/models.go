// Package request owns the blood request lifecycle. A request is created by a
// clinic, stays Active while donors are being sought, and ends in exactly one
// of Fulfilled, Cancelled, or Expired.
package request

import (
	"time"

	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
)

// Status is the lifecycle state of a blood request.
type Status string

const (
	StatusActive    Status = "Active"
	StatusFulfilled Status = "Fulfilled"
	StatusCancelled Status = "Cancelled"
	StatusExpired   Status = "Expired"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

// BloodRequest is a clinic's demand for blood of a given type.
type BloodRequest struct {
	ID         domain.RequestID   `json:"id" db:"id"`
	ClinicID   domain.ClinicID    `json:"clinic_id" db:"clinic_id"`
	BloodType  domain.BloodType   `json:"blood_type" db:"blood_type"`
	Quantity   int                `json:"quantity" db:"quantity"`
	Urgency    domain.Urgency     `json:"urgency" db:"urgency"`
	Location   domain.Coordinates `json:"location"`
	Notes      string             `json:"notes,omitempty" db:"notes"`
	RequiredBy time.Time          `json:"required_by" db:"required_by"`
	Status     Status             `json:"status" db:"status"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" db:"updated_at"`
}

// NewBloodRequest validates the clinic's input and builds an Active request.
func NewBloodRequest(id domain.RequestID, clinicID domain.ClinicID, bloodType domain.BloodType, quantity int, urgency domain.Urgency, location domain.Coordinates, notes string, requiredBy, now time.Time) (*BloodRequest, error) {
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid blood type")
	}
	if quantity < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}
	if !urgency.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid urgency")
	}
	if !requiredBy.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "required by must be in the future")
	}
	return &BloodRequest{
		ID:         id,
		ClinicID:   clinicID,
		BloodType:  bloodType,
		Quantity:   quantity,
		Urgency:    urgency,
		Location:   location,
		Notes:      notes,
		RequiredBy: requiredBy,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanCancel checks the cancel transition. Terminal requests stay terminal.
func (r *BloodRequest) CanCancel() error {
	if r.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "only an active request can be cancelled")
	}
	return nil
}

// ApplyCancel marks the request cancelled. Call CanCancel first.
func (r *BloodRequest) ApplyCancel(now time.Time) {
	r.Status = StatusCancelled
	r.UpdatedAt = now
}

// CanFulfill checks the fulfillment transition.
func (r *BloodRequest) CanFulfill() error {
	if r.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "only an active request can be fulfilled")
	}
	return nil
}

// ApplyFulfill marks the request fulfilled. Call CanFulfill first.
func (r *BloodRequest) ApplyFulfill(now time.Time) {
	r.Status = StatusFulfilled
	r.UpdatedAt = now
}

// CanExpire checks the expiry transition; only an active request past its
// deadline expires.
func (r *BloodRequest) CanExpire(now time.Time) error {
	if r.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "only an active request can expire")
	}
	if now.Before(r.RequiredBy) {
		return dErrors.New(dErrors.CodeInvariantViolation, "request deadline has not passed")
	}
	return nil
}

// ApplyExpire marks the request expired. Call CanExpire first.
func (r *BloodRequest) ApplyExpire(now time.Time) {
	r.Status = StatusExpired
	r.UpdatedAt = now
}
