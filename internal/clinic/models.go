package clinic

import (
	"time"

	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
)

// Clinic is a registered blood requester. CredentialHash is opaque here:
// hashing and verification belong to the identity provider, the domain only
// cares that a stored credential exists.
type Clinic struct {
	ID             domain.ClinicID    `json:"id" db:"id"`
	Name           string             `json:"name" db:"name"`
	Email          string             `json:"email" db:"email"`
	Phone          string             `json:"phone" db:"phone"`
	LicenseNumber  string             `json:"license_number" db:"license_number"`
	Location       domain.Coordinates `json:"location"`
	CredentialHash string             `json:"-" db:"credential_hash"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// NewClinic validates registration fields and builds a clinic record.
func NewClinic(id domain.ClinicID, name, email, phone, licenseNumber, credentialHash string, location domain.Coordinates, now time.Time) (*Clinic, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "clinic name is required")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if licenseNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "license number is required")
	}
	if credentialHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "credential is required")
	}
	return &Clinic{
		ID:             id,
		Name:           name,
		Email:          email,
		Phone:          phone,
		LicenseNumber:  licenseNumber,
		Location:       location,
		CredentialHash: credentialHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
