package matching

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/donor"
	"donorlink/pkg/domain"
	"donorlink/pkg/requestcontext"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// requestLocation is central Dubai; donor offsets below are built from it.
var requestLocation = domain.Coordinates{Latitude: 25.2048, Longitude: 55.2708}

// atDistance places a donor roughly km kilometers north of the request.
// One degree of latitude is about 111 km.
func atDistance(km float64) domain.Coordinates {
	return domain.Coordinates{Latitude: requestLocation.Latitude + km/111.0, Longitude: requestLocation.Longitude}
}

type donorSpec struct {
	name         string
	bloodType    domain.BloodType
	distanceKm   float64
	lastDonation *time.Time
	health       donor.HealthStatus
}

func buildPool(t *testing.T, specs []donorSpec) *donor.InMemoryStore {
	t.Helper()
	store := donor.NewInMemoryStore()
	for i, spec := range specs {
		health := spec.health
		if health == "" {
			health = donor.HealthEligible
		}
		d := &donor.Donor{
			ID:           domain.NewDonorID(),
			FullName:     spec.name,
			Email:        spec.name + "@example.com",
			BloodType:    spec.bloodType,
			Location:     atDistance(spec.distanceKm),
			LastDonation: spec.lastDonation,
			HealthStatus: health,
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Create(context.Background(), d))
	}
	return store
}

func newEngine(store donor.Store) *Engine {
	return NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Donor.FullName
	}
	return out
}

func daysAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestFindEligibleDonors_Filters(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("radius filter excludes distant donors", func(t *testing.T) {
		store := buildPool(t, []donorSpec{
			{name: "near", bloodType: domain.BloodOPos, distanceKm: 10},
			{name: "far", bloodType: domain.BloodOPos, distanceKm: 80},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodAPos, Location: requestLocation, Urgency: domain.UrgencyHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"near"}, names(matches))
	})

	t.Run("compatibility filter uses donor as supply side", func(t *testing.T) {
		store := buildPool(t, []donorSpec{
			{name: "universal", bloodType: domain.BloodONeg, distanceKm: 5},
			{name: "wrongtype", bloodType: domain.BloodAPos, distanceKm: 5},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodOPos, Location: requestLocation, Urgency: domain.UrgencyHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"universal"}, names(matches))
	})

	t.Run("cooldown filter excludes recent donors", func(t *testing.T) {
		store := buildPool(t, []donorSpec{
			{name: "rested", bloodType: domain.BloodOPos, distanceKm: 5, lastDonation: daysAgo(120)},
			{name: "cooling", bloodType: domain.BloodOPos, distanceKm: 5, lastDonation: daysAgo(30)},
			{name: "unhealthy", bloodType: domain.BloodOPos, distanceKm: 5, health: donor.HealthIneligible},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodOPos, Location: requestLocation, Urgency: domain.UrgencyHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"rested"}, names(matches))
	})

	t.Run("no eligible donors is an empty result, not an error", func(t *testing.T) {
		store := buildPool(t, []donorSpec{
			{name: "incompatible", bloodType: domain.BloodAPos, distanceKm: 5},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodABNeg, Location: requestLocation, Urgency: domain.UrgencyHigh,
		})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestFindEligibleDonors_Ranking(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("high urgency ranks by distance only", func(t *testing.T) {
		store := buildPool(t, []donorSpec{
			{name: "at20km", bloodType: domain.BloodOPos, distanceKm: 20, lastDonation: daysAgo(400)},
			{name: "at5km", bloodType: domain.BloodOPos, distanceKm: 5, lastDonation: daysAgo(100)},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodOPos, Location: requestLocation, Urgency: domain.UrgencyHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"at5km", "at20km"}, names(matches))
	})

	t.Run("lower urgency prefers older last donations", func(t *testing.T) {
		// Same distance; the donor who donated longer ago must rank first,
		// and a donor who never donated outranks both.
		store := buildPool(t, []donorSpec{
			{name: "recent", bloodType: domain.BloodOPos, distanceKm: 10, lastDonation: daysAgo(100)},
			{name: "old", bloodType: domain.BloodOPos, distanceKm: 10, lastDonation: daysAgo(400)},
			{name: "never", bloodType: domain.BloodOPos, distanceKm: 10},
		})
		matches, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
			BloodType: domain.BloodOPos, Location: requestLocation, Urgency: domain.UrgencyMedium,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"never", "old", "recent"}, names(matches))
	})
}

func TestFindEligibleDonors_InvalidBloodType(t *testing.T) {
	ctx := context.Background()
	store := donor.NewInMemoryStore()
	_, err := newEngine(store).FindEligibleDonors(ctx, MatchRequest{
		BloodType: domain.BloodType("X+"), Location: requestLocation, Urgency: domain.UrgencyLow,
	})
	assert.Error(t, err)
}
