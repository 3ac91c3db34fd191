// Package eligibility holds the rules deciding whether a donor may donate.
// This is pure domain logic - no I/O, no side effects. Functions receive all
// data they need as arguments and return a verdict.
package eligibility

import "time"

const (
	// DonationCooldown is the minimum interval between donations used when
	// filtering candidates for a request.
	DonationCooldown = 90 * 24 * time.Hour

	// postDonationBufferMonths is the buffer applied to a donor's record when
	// a donation is confirmed. It is deliberately larger than the 90-day
	// cooldown used for filtering: a confirmed donation pushes the recorded
	// next-eligible date out a full four months.
	postDonationBufferMonths = 4
)

// Reason explains a registration rejection.
type Reason string

const (
	ReasonAge              Reason = "age requirement not met"
	ReasonWeight           Reason = "minimum weight requirement not met"
	ReasonRecentDonation   Reason = "donated within the last 3 months"
	ReasonChronicCondition Reason = "chronic medical condition reported"
)

// Verdict is the outcome of a registration-time evaluation.
type Verdict struct {
	Eligible bool
	Reason   Reason
}

// EvaluateRegistration applies the registration rule chain.
// Rule priority (fail-fast):
//  1. Age bracket must be 17-65
//  2. Weight bracket must be at least 50kg
//  3. Last donation must not be within 3 months
//  4. No chronic medical condition
func EvaluateRegistration(q QuizAnswers) Verdict {
	if q.Age != Age17To65 {
		return Verdict{Reason: ReasonAge}
	}
	if q.Weight == WeightUnder50 {
		return Verdict{Reason: ReasonWeight}
	}
	if q.LastDonation == DonatedWithin3Months {
		return Verdict{Reason: ReasonRecentDonation}
	}
	if q.HasChronicCondition {
		return Verdict{Reason: ReasonChronicCondition}
	}
	return Verdict{Eligible: true}
}

// CanDonateAgain reports whether a donor with the given last donation date may
// donate at now, and when the cooldown lapses. Donors who never donated are
// always eligible; their next-eligible date is the zero time.
func CanDonateAgain(lastDonation *time.Time, now time.Time) (bool, time.Time) {
	if lastDonation == nil {
		return true, time.Time{}
	}
	next := lastDonation.Add(DonationCooldown)
	return !now.Before(next), next
}

// NextEligibleAfterDonation returns the recorded next-eligible date for a
// donation confirmed at the given time.
func NextEligibleAfterDonation(confirmedAt time.Time) time.Time {
	return confirmedAt.AddDate(0, postDonationBufferMonths, 0)
}
