package domain

import dErrors "donorlink/pkg/domain-errors"

// BloodType is one of the 8 standard ABO/Rh blood types.
//
// Usage: construct via ParseBloodType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type BloodType string

const (
	BloodONeg  BloodType = "O-"
	BloodOPos  BloodType = "O+"
	BloodANeg  BloodType = "A-"
	BloodAPos  BloodType = "A+"
	BloodBNeg  BloodType = "B-"
	BloodBPos  BloodType = "B+"
	BloodABNeg BloodType = "AB-"
	BloodABPos BloodType = "AB+"
)

// AllBloodTypes lists every valid type, in conventional order.
var AllBloodTypes = []BloodType{
	BloodONeg, BloodOPos, BloodANeg, BloodAPos,
	BloodBNeg, BloodBPos, BloodABNeg, BloodABPos,
}

// compatibleRecipients is the single source of truth for transfusion
// compatibility, keyed by donor type. Compatibility is directional: O- can
// give to anyone, AB+ can receive from anyone, and the relation is not
// symmetric in between.
var compatibleRecipients = map[BloodType]map[BloodType]bool{
	BloodONeg:  set(BloodONeg, BloodOPos, BloodANeg, BloodAPos, BloodBNeg, BloodBPos, BloodABNeg, BloodABPos),
	BloodOPos:  set(BloodOPos, BloodAPos, BloodBPos, BloodABPos),
	BloodANeg:  set(BloodANeg, BloodAPos, BloodABNeg, BloodABPos),
	BloodAPos:  set(BloodAPos, BloodABPos),
	BloodBNeg:  set(BloodBNeg, BloodBPos, BloodABNeg, BloodABPos),
	BloodBPos:  set(BloodBPos, BloodABPos),
	BloodABNeg: set(BloodABNeg, BloodABPos),
	BloodABPos: set(BloodABPos),
}

func set(types ...BloodType) map[BloodType]bool {
	m := make(map[BloodType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// CanDonateTo reports whether blood of the receiver's type may be transfused
// to a recipient of the given type. Unknown types on either side yield false,
// never a panic: an unrecognized type must fail closed.
func (b BloodType) CanDonateTo(recipient BloodType) bool {
	return compatibleRecipients[b][recipient]
}

// IsRare reports whether the type is one of the rare types that qualify for
// special recognition rewards.
func (b BloodType) IsRare() bool {
	switch b {
	case BloodONeg, BloodBNeg, BloodABNeg:
		return true
	}
	return false
}

// IsValid checks membership in the 8-type allowlist.
func (b BloodType) IsValid() bool {
	_, ok := compatibleRecipients[b]
	return ok
}

func (b BloodType) String() string {
	return string(b)
}

// ParseBloodType constructs a BloodType from external input.
//
// Errors: returns CodeValidation when the value is empty or not one of the 8
// standard types; no other errors are expected.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "blood type cannot be empty")
	}
	b := BloodType(s)
	if !b.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid blood type")
	}
	return b, nil
}
