// Package httptransport is the thin HTTP layer. Handlers decode, call domain
// services, and encode; business rules stay behind the service boundary.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"donorlink/internal/clinic"
	"donorlink/internal/donor"
	"donorlink/internal/notification"
	"donorlink/internal/platform/middleware"
	"donorlink/internal/request"
	"donorlink/internal/token"
	"donorlink/pkg/platform/httputil"
)

// Services bundles the domain dependencies the router needs.
type Services struct {
	Donors        *donor.Service
	Clinics       *clinic.Service
	Requests      *request.Service
	Notifications *notification.Service
	Tokens        *token.Service
}

// NewRouter wires middleware and all public and authenticated endpoints.
func NewRouter(s Services, logger *slog.Logger) http.Handler {
	dh := &donorHandler{donors: s.Donors, notifications: s.Notifications, tokens: s.Tokens, logger: logger}
	ch := &clinicHandler{clinics: s.Clinics, tokens: s.Tokens, logger: logger}
	rh := &requestHandler{requests: s.Requests, logger: logger}
	nh := &notificationHandler{notifications: s.Notifications, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/donors", dh.Register)
	r.Post("/clinics", ch.Register)
	r.Post("/auth/clinic/login", ch.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.Tokens, logger))
		r.Use(middleware.RequireActorType(middleware.ActorDonor))

		r.Get("/donors/me", dh.Me)
		r.Get("/donors/me/eligibility", dh.Eligibility)
		r.Get("/donors/me/rewards", dh.Rewards)
		r.Get("/donors/me/notifications", dh.Notifications)
		r.Post("/donors/notifications/{notificationID}/interest", nh.MarkInterested)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.Tokens, logger))
		r.Use(middleware.RequireActorType(middleware.ActorClinic))

		r.Post("/clinics/requests", rh.Create)
		r.Get("/clinics/requests", rh.List)
		r.Get("/clinics/requests/{requestID}", rh.Get)
		r.Get("/clinics/requests/{requestID}/matches", rh.Matches)
		r.Patch("/clinics/requests/{requestID}", rh.UpdateStatus)
		r.Post("/clinics/notifications/{notificationID}/mark-donated", nh.MarkDonated)
	})

	return r
}
