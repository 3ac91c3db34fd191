package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the platform. One struct keeps
// registration in a single place; services receive it by injection and a nil
// receiver disables recording, so tests don't touch the default registry.
type Metrics struct {
	DonorsRegistered    prometheus.Counter
	RequestsCreated     prometheus.Counter
	RequestsCancelled   prometheus.Counter
	DonationsConfirmed  prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	MatchCandidates     prometheus.Histogram
	MatchingDuration    prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DonorsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_donors_registered_total",
			Help: "Total number of donors registered",
		}),
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_requests_created_total",
			Help: "Total number of blood requests created",
		}),
		RequestsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_requests_cancelled_total",
			Help: "Total number of blood requests cancelled",
		}),
		DonationsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_donations_confirmed_total",
			Help: "Total number of donations confirmed by clinics",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_notifications_sent_total",
			Help: "Total number of donor notifications delivered",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_notifications_failed_total",
			Help: "Total number of donor notifications that failed to deliver",
		}),
		MatchCandidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "donorlink_match_candidates",
			Help:    "Number of eligible donors returned per matching round",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		MatchingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "donorlink_matching_duration_seconds",
			Help:    "Duration of donor matching rounds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncDonorsRegistered records a successful donor registration.
func (m *Metrics) IncDonorsRegistered() {
	if m != nil {
		m.DonorsRegistered.Inc()
	}
}

// IncRequestsCreated records a created blood request.
func (m *Metrics) IncRequestsCreated() {
	if m != nil {
		m.RequestsCreated.Inc()
	}
}

// IncRequestsCancelled records a cancelled blood request.
func (m *Metrics) IncRequestsCancelled() {
	if m != nil {
		m.RequestsCancelled.Inc()
	}
}

// IncDonationsConfirmed records a confirmed donation.
func (m *Metrics) IncDonationsConfirmed() {
	if m != nil {
		m.DonationsConfirmed.Inc()
	}
}

// IncNotificationsSent records a delivered notification.
func (m *Metrics) IncNotificationsSent() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

// IncNotificationsFailed records a notification delivery failure.
func (m *Metrics) IncNotificationsFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

// ObserveMatch records the size and duration of one matching round.
func (m *Metrics) ObserveMatch(candidates int, start time.Time) {
	if m != nil {
		m.MatchCandidates.Observe(float64(candidates))
		m.MatchingDuration.Observe(time.Since(start).Seconds())
	}
}
