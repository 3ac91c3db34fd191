package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"donorlink/internal/platform/middleware"
	"donorlink/internal/request"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/httputil"
)

type requestHandler struct {
	requests *request.Service
	logger   *slog.Logger
}

type createRequestRequest struct {
	BloodType  string    `json:"blood_type"`
	Quantity   int       `json:"quantity"`
	Urgency    string    `json:"urgency"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RequiredBy time.Time `json:"required_by"`
}

func (h *requestHandler) authenticatedClinicID(w http.ResponseWriter, r *http.Request) (domain.ClinicID, bool) {
	id, err := domain.ParseClinicID(middleware.GetActorID(r.Context()))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid clinic identity"))
		return domain.ClinicID{}, false
	}
	return id, true
}

func (h *requestHandler) pathRequestID(w http.ResponseWriter, r *http.Request) (domain.RequestID, bool) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.RequestID{}, false
	}
	return id, true
}

// Create handles POST /clinics/requests.
func (h *requestHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clinicID, ok := h.authenticatedClinicID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[createRequestRequest](w, r)
	if !ok {
		return
	}
	bloodType, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	urgency, err := domain.ParseUrgency(req.Urgency)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	location, err := domain.NewCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.requests.Create(ctx, clinicID, request.CreateInput{
		BloodType:  bloodType,
		Quantity:   req.Quantity,
		Urgency:    urgency,
		Location:   location,
		RequiredBy: req.RequiredBy,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// List handles GET /clinics/requests.
func (h *requestHandler) List(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := h.authenticatedClinicID(w, r)
	if !ok {
		return
	}
	list, err := h.requests.ListForClinic(r.Context(), clinicID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": list})
}

// Get handles GET /clinics/requests/{requestID}.
func (h *requestHandler) Get(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := h.authenticatedClinicID(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathRequestID(w, r)
	if !ok {
		return
	}
	result, err := h.requests.Get(r.Context(), clinicID, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type matchResponse struct {
	DonorID    string  `json:"donor_id"`
	FullName   string  `json:"full_name"`
	BloodType  string  `json:"blood_type"`
	DistanceKm float64 `json:"distance_km"`
	Score      float64 `json:"score"`
}

// Matches handles GET /clinics/requests/{requestID}/matches. Contact details
// stay out of the response; donors are reached through notifications.
func (h *requestHandler) Matches(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := h.authenticatedClinicID(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathRequestID(w, r)
	if !ok {
		return
	}
	matches, err := h.requests.Matches(r.Context(), clinicID, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{
			DonorID:    m.Donor.ID.String(),
			FullName:   m.Donor.FullName,
			BloodType:  m.Donor.BloodType.String(),
			DistanceKm: m.DistanceKm,
			Score:      m.Score,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"matches": out})
}

type updateRequestRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /clinics/requests/{requestID}. The only
// clinic-driven transitions are Cancelled and Fulfilled; everything else is
// rejected before touching the service.
func (h *requestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clinicID, ok := h.authenticatedClinicID(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathRequestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[updateRequestRequest](w, r)
	if !ok {
		return
	}

	var (
		result *request.BloodRequest
		err    error
	)
	switch request.Status(req.Status) {
	case request.StatusCancelled:
		result, err = h.requests.Cancel(ctx, clinicID, requestID)
	case request.StatusFulfilled:
		result, err = h.requests.MarkFulfilled(ctx, clinicID, requestID)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "status must be Cancelled or Fulfilled"))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
