package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorlink/internal/notification"
	"donorlink/internal/platform/middleware"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/httputil"
)

type notificationHandler struct {
	notifications *notification.Service
	logger        *slog.Logger
}

func (h *notificationHandler) pathNotificationID(w http.ResponseWriter, r *http.Request) (domain.NotificationID, bool) {
	id, err := domain.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.NotificationID{}, false
	}
	return id, true
}

// MarkInterested handles POST /donors/notifications/{notificationID}/interest.
func (h *notificationHandler) MarkInterested(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donorID, err := domain.ParseDonorID(middleware.GetActorID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid donor identity"))
		return
	}
	notificationID, ok := h.pathNotificationID(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkInterested(ctx, donorID, notificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

type markDonatedResponse struct {
	DonorID        string `json:"donor_id"`
	Points         int    `json:"points"`
	TotalDonations int    `json:"total_donations"`
}

// MarkDonated handles POST /clinics/notifications/{notificationID}/mark-donated.
func (h *notificationHandler) MarkDonated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clinicID, err := domain.ParseClinicID(middleware.GetActorID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid clinic identity"))
		return
	}
	notificationID, ok := h.pathNotificationID(w, r)
	if !ok {
		return
	}

	d, err := h.notifications.MarkDonated(ctx, clinicID, notificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, markDonatedResponse{
		DonorID:        d.ID.String(),
		Points:         d.Points,
		TotalDonations: d.TotalDonations,
	})
}
