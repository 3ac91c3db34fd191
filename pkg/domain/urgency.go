package domain

import dErrors "donorlink/pkg/domain-errors"

// Urgency is the clinic-assigned priority on a blood request. High urgency
// changes matching rank order to distance-only.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

var validUrgencies = map[Urgency]bool{
	UrgencyHigh:   true,
	UrgencyMedium: true,
	UrgencyLow:    true,
}

func (u Urgency) IsValid() bool {
	return validUrgencies[u]
}

func (u Urgency) String() string {
	return string(u)
}

// ParseUrgency constructs an Urgency from external input.
func ParseUrgency(s string) (Urgency, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "urgency cannot be empty")
	}
	u := Urgency(s)
	if !u.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "urgency must be High, Medium, or Low")
	}
	return u, nil
}
