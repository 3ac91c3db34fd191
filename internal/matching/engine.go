// Package matching selects and ranks donors for a blood request. The engine
// is read-only: it filters the donor pool by proximity, compatibility, and
// cooldown, then orders the survivors by the request's urgency policy.
package matching

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"donorlink/internal/donor"
	"donorlink/internal/platform/metrics"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/requestcontext"
)

// RadiusKm is the fixed search radius around a request's location.
const RadiusKm = 50.0

// Ranking weights for non-high urgency: mostly distance, with a preference
// for donors whose last donation is older. Recency is measured in days since
// the Unix epoch of the last donation, so an older date contributes a smaller
// term; donors who never donated rank as oldest.
const (
	distanceWeight = 0.7
	recencyWeight  = 0.3
)

// MatchRequest is the slice of a blood request the engine needs.
type MatchRequest struct {
	BloodType domain.BloodType
	Location  domain.Coordinates
	Urgency   domain.Urgency
}

// Match pairs a donor with the metrics that ranked them.
type Match struct {
	Donor      *donor.Donor
	DistanceKm float64
	Score      float64
}

// Engine runs donor matching rounds against the donor store.
type Engine struct {
	donors  donor.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewEngine(donors donor.Store, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{donors: donors, logger: logger, metrics: m}
}

// FindEligibleDonors returns the ranked eligible donors for a request. An
// empty result is a normal outcome, not an error; the caller decides how many
// of the returned donors to notify.
func (e *Engine) FindEligibleDonors(ctx context.Context, req MatchRequest) ([]Match, error) {
	if !req.BloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid blood type")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)

	pool, err := e.donors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor pool")
	}

	matches := make([]Match, 0, len(pool))
	for _, d := range pool {
		dist := d.Location.DistanceKm(req.Location)
		if dist > RadiusKm {
			continue
		}
		if !d.BloodType.CanDonateTo(req.BloodType) {
			continue
		}
		if !d.CanDonate(now) {
			continue
		}
		matches = append(matches, Match{
			Donor:      d,
			DistanceKm: dist,
			Score:      score(d, dist, req.Urgency),
		})
	}

	// Stable sort keeps insertion order on ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})

	e.metrics.ObserveMatch(len(matches), start)
	e.logger.InfoContext(ctx, "matching round complete",
		"blood_type", req.BloodType.String(),
		"urgency", req.Urgency.String(),
		"pool", len(pool),
		"matches", len(matches),
	)
	return matches, nil
}

func score(d *donor.Donor, distanceKm float64, urgency domain.Urgency) float64 {
	if urgency == domain.UrgencyHigh {
		return distanceKm
	}
	var recencyDays float64
	if d.LastDonation != nil {
		recencyDays = float64(d.LastDonation.Unix()) / 86400
	}
	return distanceWeight*distanceKm + recencyWeight*recencyDays
}
