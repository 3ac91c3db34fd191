package incentive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"donorlink/pkg/domain"
)

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 600},
		{5, 750},
		{6, 900},
		{7, 1400},
		{8, 1600},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculatePoints(tt.count), "count=%d", tt.count)
	}
}

func TestCalculateRewards(t *testing.T) {
	assert.Empty(t, CalculateRewards(0))
	assert.Empty(t, CalculateRewards(100))
	assert.Equal(t, []string{RewardDonorCertificate}, CalculateRewards(200))
	assert.Equal(t, []string{RewardFreeHealthCheckup, RewardDonorCertificate}, CalculateRewards(500))
	assert.Equal(t,
		[]string{RewardPremiumDonorBadge, RewardFreeHealthCheckup, RewardDonorCertificate},
		CalculateRewards(1500))
}

func TestCalculateSpecialRewards(t *testing.T) {
	want := []string{RewardSpecialRecognition, RewardPriorityDonor}

	for _, rare := range []domain.BloodType{domain.BloodONeg, domain.BloodBNeg, domain.BloodABNeg} {
		assert.Equal(t, want, CalculateSpecialRewards(rare, 500), "%s at threshold", rare)
		assert.Empty(t, CalculateSpecialRewards(rare, 499), "%s below threshold", rare)
	}

	assert.Empty(t, CalculateSpecialRewards(domain.BloodAPos, 5000), "common type never qualifies")
}

func TestSummarize(t *testing.T) {
	s := Summarize(600, 5, domain.BloodONeg)
	assert.Equal(t, 600, s.Points)
	assert.Equal(t, 750, s.LifetimeScore)
	assert.Equal(t, []string{RewardFreeHealthCheckup, RewardDonorCertificate}, s.Rewards)
	assert.Equal(t, []string{RewardSpecialRecognition, RewardPriorityDonor}, s.SpecialRewards)
}
