package domain

import (
	"github.com/google/uuid"

	dErrors "donorlink/pkg/domain-errors"
)

// Typed UUID identifiers for the platform's aggregates. Distinct types stop a
// donor ID from being passed where a clinic ID is expected. Each type carries
// text marshalling so JSON and scanning see the canonical string form.

type DonorID uuid.UUID

func NewDonorID() DonorID         { return DonorID(uuid.New()) }
func (id DonorID) String() string { return uuid.UUID(id).String() }
func (id DonorID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id DonorID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *DonorID) UnmarshalText(b []byte) error {
	parsed, err := ParseDonorID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseDonorID constructs a DonorID from external input.
func ParseDonorID(s string) (DonorID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DonorID{}, dErrors.New(dErrors.CodeValidation, "invalid donor id")
	}
	return DonorID(u), nil
}

type ClinicID uuid.UUID

func NewClinicID() ClinicID        { return ClinicID(uuid.New()) }
func (id ClinicID) String() string { return uuid.UUID(id).String() }
func (id ClinicID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id ClinicID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ClinicID) UnmarshalText(b []byte) error {
	parsed, err := ParseClinicID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseClinicID constructs a ClinicID from external input.
func ParseClinicID(s string) (ClinicID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ClinicID{}, dErrors.New(dErrors.CodeValidation, "invalid clinic id")
	}
	return ClinicID(u), nil
}

type RequestID uuid.UUID

func NewRequestID() RequestID       { return RequestID(uuid.New()) }
func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id RequestID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id RequestID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseRequestID constructs a RequestID from external input.
func ParseRequestID(s string) (RequestID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, dErrors.New(dErrors.CodeValidation, "invalid request id")
	}
	return RequestID(u), nil
}

type NotificationID uuid.UUID

func NewNotificationID() NotificationID  { return NotificationID(uuid.New()) }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id NotificationID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *NotificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseNotificationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseNotificationID constructs a NotificationID from external input.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NotificationID{}, dErrors.New(dErrors.CodeValidation, "invalid notification id")
	}
	return NotificationID(u), nil
}
