package donor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/eligibility"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/requestcontext"
)

func newService(t *testing.T) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil), store
}

func validRegistration(t *testing.T) RegisterInput {
	t.Helper()
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	return RegisterInput{
		FullName:  "Aisha Khan",
		Email:     "aisha.khan@example.com",
		Phone:     "+971501234567",
		BloodType: domain.BloodONeg,
		Location:  loc,
		Quiz: eligibility.QuizAnswers{
			Age:          eligibility.Age17To65,
			Weight:       eligibility.WeightOver60,
			LastDonation: eligibility.DonatedNever,
		},
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible quiz creates donor", func(t *testing.T) {
		svc, store := newService(t)
		d, err := svc.Register(ctx, validRegistration(t))
		require.NoError(t, err)
		assert.Equal(t, HealthEligible, d.HealthStatus)
		assert.Zero(t, d.Points)
		assert.Nil(t, d.LastDonation)

		stored, err := store.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "aisha.khan@example.com", stored.Email)
	})

	t.Run("ineligible quiz is rejected with the failing rule", func(t *testing.T) {
		svc, _ := newService(t)
		in := validRegistration(t)
		in.Quiz.HasChronicCondition = true

		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "chronic")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, validRegistration(t))
		require.NoError(t, err)

		_, err = svc.Register(ctx, validRegistration(t))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("missing donor is NotFound", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.CheckEligibility(ctx, domain.NewDonorID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("never donated is eligible", func(t *testing.T) {
		svc, _ := newService(t)
		d, err := svc.Register(ctx, validRegistration(t))
		require.NoError(t, err)

		res, err := svc.CheckEligibility(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, res.Eligible)
		assert.Nil(t, res.NextEligibleDate)
	})

	t.Run("donated today is ineligible for 90 days", func(t *testing.T) {
		svc, store := newService(t)
		d, err := svc.Register(ctx, validRegistration(t))
		require.NoError(t, err)

		_, err = store.Execute(ctx, d.ID, nil, func(d *Donor) { d.ApplyDonation(now) })
		require.NoError(t, err)

		res, err := svc.CheckEligibility(ctx, d.ID)
		require.NoError(t, err)
		assert.False(t, res.Eligible)
		require.NotNil(t, res.NextEligibleDate)
		assert.Equal(t, now.Add(eligibility.DonationCooldown), *res.NextEligibleDate)
	})
}

func TestApplyDonation(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	d, err := NewDonor(domain.NewDonorID(), "Omar Said", "omar@example.com", "", domain.BloodAPos, loc, now)
	require.NoError(t, err)

	d.ApplyDonation(now)

	require.NotNil(t, d.LastDonation)
	assert.Equal(t, now, *d.LastDonation)
	require.NotNil(t, d.EligibleToDonateSince)
	assert.Equal(t, now.AddDate(0, 4, 0), *d.EligibleToDonateSince)
	assert.Equal(t, PointsPerDonation, d.Points)
	assert.Equal(t, 1, d.TotalDonations)
	assert.False(t, d.CanDonate(now))
}
