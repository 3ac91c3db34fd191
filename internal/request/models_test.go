package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
)

func activeRequest(t *testing.T, now time.Time) *BloodRequest {
	t.Helper()
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	r, err := NewBloodRequest(domain.NewRequestID(), domain.NewClinicID(),
		domain.BloodAPos, 2, domain.UrgencyHigh, loc, "two units for surgery", now.Add(48*time.Hour), now)
	require.NoError(t, err)
	return r
}

func TestNewBloodRequest(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)

	t.Run("valid input starts active", func(t *testing.T) {
		r := activeRequest(t, now)
		assert.Equal(t, StatusActive, r.Status)
		assert.False(t, r.Status.IsTerminal())
	})

	tests := []struct {
		name       string
		bloodType  domain.BloodType
		quantity   int
		urgency    domain.Urgency
		requiredBy time.Time
		wantErr    string
	}{
		{"unknown blood type", "X+", 1, domain.UrgencyLow, now.Add(time.Hour), "blood type"},
		{"zero quantity", domain.BloodAPos, 0, domain.UrgencyLow, now.Add(time.Hour), "quantity"},
		{"unknown urgency", domain.BloodAPos, 1, "Frantic", now.Add(time.Hour), "urgency"},
		{"deadline in the past", domain.BloodAPos, 1, domain.UrgencyLow, now.Add(-time.Hour), "future"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBloodRequest(domain.NewRequestID(), domain.NewClinicID(),
				tc.bloodType, tc.quantity, tc.urgency, loc, "", tc.requiredBy, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLifecycleTransitions(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("active cancels once", func(t *testing.T) {
		r := activeRequest(t, now)
		require.NoError(t, r.CanCancel())
		r.ApplyCancel(now)
		assert.Equal(t, StatusCancelled, r.Status)
		assert.True(t, r.Status.IsTerminal())
		assert.Error(t, r.CanCancel())
	})

	t.Run("terminal states reject every transition", func(t *testing.T) {
		for _, terminal := range []Status{StatusFulfilled, StatusCancelled, StatusExpired} {
			r := activeRequest(t, now)
			r.Status = terminal
			assert.Error(t, r.CanCancel(), string(terminal))
			assert.Error(t, r.CanFulfill(), string(terminal))
			assert.Error(t, r.CanExpire(now.Add(100*time.Hour)), string(terminal))
		}
	})

	t.Run("expiry needs the deadline to pass", func(t *testing.T) {
		r := activeRequest(t, now)
		err := r.CanExpire(now.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		require.NoError(t, r.CanExpire(r.RequiredBy))
		r.ApplyExpire(r.RequiredBy)
		assert.Equal(t, StatusExpired, r.Status)
	})
}
