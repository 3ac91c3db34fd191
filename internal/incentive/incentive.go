// Package incentive computes reward points and reward tiers from donation
// history. This is pure domain logic - no I/O, no side effects.
//
// Two point figures coexist on purpose. The donor record's stored Points grow
// by a flat 100 per confirmed donation (see internal/donor). CalculatePoints
// here is the tiered lifetime-score recompute shown on the donor dashboard:
// frequent donors earn a higher multiplier over their whole history. Rewards
// are gated on the stored points balance.
package incentive

import "donorlink/pkg/domain"

// Reward labels.
const (
	RewardDonorCertificate   = "Donor Certificate"
	RewardFreeHealthCheckup  = "Free Health Checkup"
	RewardPremiumDonorBadge  = "Premium Donor Badge"
	RewardSpecialRecognition = "Special Recognition Badge"
	RewardPriorityDonor      = "Priority Donor Status"
)

// CalculatePoints recomputes the tiered lifetime score from a total donation
// count. The multiplier applies to the whole count, not per bracket.
func CalculatePoints(donationCount int) int {
	switch {
	case donationCount <= 0:
		return 0
	case donationCount <= 3:
		return donationCount * 100
	case donationCount <= 6:
		return donationCount * 150
	default:
		return donationCount * 200
	}
}

// CalculateRewards returns every reward whose threshold the points balance
// meets. Thresholds are cumulative, not exclusive tiers.
func CalculateRewards(points int) []string {
	var rewards []string
	if points >= 1000 {
		rewards = append(rewards, RewardPremiumDonorBadge)
	}
	if points >= 500 {
		rewards = append(rewards, RewardFreeHealthCheckup)
	}
	if points >= 200 {
		rewards = append(rewards, RewardDonorCertificate)
	}
	return rewards
}

// CalculateSpecialRewards grants extra recognition to donors of rare blood
// types (O-, B-, AB-) once they pass 500 points.
func CalculateSpecialRewards(bloodType domain.BloodType, points int) []string {
	if !bloodType.IsRare() || points < 500 {
		return nil
	}
	return []string{RewardSpecialRecognition, RewardPriorityDonor}
}

// Summary bundles everything the donor dashboard shows about incentives.
type Summary struct {
	Points         int      `json:"points"`
	LifetimeScore  int      `json:"lifetime_score"`
	Rewards        []string `json:"rewards"`
	SpecialRewards []string `json:"special_rewards,omitempty"`
}

// Summarize builds a Summary from a donor's stored balance, total donation
// count, and blood type.
func Summarize(points, totalDonations int, bloodType domain.BloodType) Summary {
	return Summary{
		Points:         points,
		LifetimeScore:  CalculatePoints(totalDonations),
		Rewards:        CalculateRewards(points),
		SpecialRewards: CalculateSpecialRewards(bloodType, points),
	}
}
