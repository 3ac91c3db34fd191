package eligibility

import dErrors "donorlink/pkg/domain-errors"

// Quiz answer brackets. The registration form collects these as fixed choices;
// parse at the boundary so the rules only ever see valid brackets.

type AgeBracket string

const (
	AgeUnder17 AgeBracket = "under17"
	Age17To65  AgeBracket = "17to65"
	AgeOver65  AgeBracket = "over65"
)

var validAgeBrackets = map[AgeBracket]bool{
	AgeUnder17: true,
	Age17To65:  true,
	AgeOver65:  true,
}

// ParseAgeBracket constructs an AgeBracket from external input.
func ParseAgeBracket(s string) (AgeBracket, error) {
	b := AgeBracket(s)
	if !validAgeBrackets[b] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid age bracket")
	}
	return b, nil
}

type WeightBracket string

const (
	WeightUnder50 WeightBracket = "under50kg"
	Weight50To60  WeightBracket = "50to60kg"
	WeightOver60  WeightBracket = "over60kg"
)

var validWeightBrackets = map[WeightBracket]bool{
	WeightUnder50: true,
	Weight50To60:  true,
	WeightOver60:  true,
}

// ParseWeightBracket constructs a WeightBracket from external input.
func ParseWeightBracket(s string) (WeightBracket, error) {
	b := WeightBracket(s)
	if !validWeightBrackets[b] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid weight bracket")
	}
	return b, nil
}

type LastDonationBracket string

const (
	DonatedNever         LastDonationBracket = "never"
	DonatedWithin3Months LastDonationBracket = "within3months"
	Donated3To6Months    LastDonationBracket = "3to6months"
	DonatedOver6Months   LastDonationBracket = "over6months"
)

var validLastDonationBrackets = map[LastDonationBracket]bool{
	DonatedNever:         true,
	DonatedWithin3Months: true,
	Donated3To6Months:    true,
	DonatedOver6Months:   true,
}

// ParseLastDonationBracket constructs a LastDonationBracket from external input.
func ParseLastDonationBracket(s string) (LastDonationBracket, error) {
	b := LastDonationBracket(s)
	if !validLastDonationBrackets[b] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid last donation bracket")
	}
	return b, nil
}

// QuizAnswers is the ephemeral registration questionnaire. It is consumed once
// to produce the initial verdict and is not persisted as an entity.
//
// Medication and recent-surgery answers are collected but do not gate
// eligibility. The questionnaire asks about them so clinic staff see the
// answers at donation time; only chronic conditions block registration.
type QuizAnswers struct {
	Age                 AgeBracket
	Weight              WeightBracket
	LastDonation        LastDonationBracket
	HasChronicCondition bool
	TakesMedication     bool
	HadRecentSurgery    bool
	BloodType           string // optional; "" or "unknown" when the donor doesn't know
}
