package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/donor"
	"donorlink/internal/platform/middleware"
	"donorlink/pkg/domain"
	"donorlink/pkg/testutil"
)

// Handler-level tests exercise one endpoint with a pinned clock and a
// pre-authenticated request, without the full router stack.

func TestEligibilityHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	store := donor.NewInMemoryStore()
	h := &donorHandler{donors: donor.NewService(store, logger, nil), logger: logger}

	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	d, err := donor.NewDonor(domain.NewDonorID(), "Sara Noor", "sara.noor@example.com", "+971509998877",
		domain.BloodBPos, loc, now.AddDate(0, -6, 0))
	require.NoError(t, err)
	donated := now.AddDate(0, 0, -30)
	d.LastDonation = &donated
	require.NoError(t, store.Create(context.Background(), d))

	req := httptest.NewRequest(http.MethodGet, "/donors/me/eligibility", nil)
	req = testutil.WithActor(req, d.ID.String(), d.Email, middleware.ActorDonor)
	req = testutil.WithTime(req, now)

	w := httptest.NewRecorder()
	h.Eligibility(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Eligible         bool       `json:"eligible"`
		NextEligibleDate *time.Time `json:"next_eligible_date"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Eligible)
	require.NotNil(t, body.NextEligibleDate)
	assert.Equal(t, donated.AddDate(0, 0, 90), body.NextEligibleDate.UTC())
}

func TestRewardsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	store := donor.NewInMemoryStore()
	h := &donorHandler{donors: donor.NewService(store, logger, nil), logger: logger}

	loc, err := domain.NewCoordinates(25.2, 55.3)
	require.NoError(t, err)
	d, err := donor.NewDonor(domain.NewDonorID(), "Rare Donor", "rare.donor@example.com", "+971501234000",
		domain.BloodONeg, loc, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	d.Points = 600
	d.TotalDonations = 5
	require.NoError(t, store.Create(context.Background(), d))

	req := httptest.NewRequest(http.MethodGet, "/donors/me/rewards", nil)
	req = testutil.WithActor(req, d.ID.String(), d.Email, middleware.ActorDonor)
	req = testutil.WithTime(req, now)

	w := httptest.NewRecorder()
	h.Rewards(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Points         int      `json:"points"`
		LifetimeScore  int      `json:"lifetime_score"`
		Rewards        []string `json:"rewards"`
		SpecialRewards []string `json:"special_rewards"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 600, body.Points)
	assert.Equal(t, 750, body.LifetimeScore)
	assert.NotEmpty(t, body.Rewards)
	assert.NotEmpty(t, body.SpecialRewards)
}
