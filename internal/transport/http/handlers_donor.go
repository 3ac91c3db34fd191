package httptransport

import (
	"log/slog"
	"net/http"

	"donorlink/internal/donor"
	"donorlink/internal/eligibility"
	"donorlink/internal/incentive"
	"donorlink/internal/notification"
	"donorlink/internal/platform/middleware"
	"donorlink/internal/token"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/httputil"
)

type donorHandler struct {
	donors        *donor.Service
	notifications *notification.Service
	tokens        *token.Service
	logger        *slog.Logger
}

type quizRequest struct {
	Age                 string `json:"age"`
	Weight              string `json:"weight"`
	LastDonation        string `json:"last_donation"`
	HasChronicCondition bool   `json:"has_chronic_condition"`
	TakesMedication     bool   `json:"takes_medication"`
	HadRecentSurgery    bool   `json:"had_recent_surgery"`
	BloodType           string `json:"blood_type,omitempty"`
}

type registerDonorRequest struct {
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	BloodType string      `json:"blood_type"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Quiz      quizRequest `json:"quiz"`
}

func (req registerDonorRequest) toInput() (donor.RegisterInput, error) {
	bloodType, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		return donor.RegisterInput{}, err
	}
	location, err := domain.NewCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return donor.RegisterInput{}, err
	}
	age, err := eligibility.ParseAgeBracket(req.Quiz.Age)
	if err != nil {
		return donor.RegisterInput{}, err
	}
	weight, err := eligibility.ParseWeightBracket(req.Quiz.Weight)
	if err != nil {
		return donor.RegisterInput{}, err
	}
	lastDonation, err := eligibility.ParseLastDonationBracket(req.Quiz.LastDonation)
	if err != nil {
		return donor.RegisterInput{}, err
	}
	return donor.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		BloodType: bloodType,
		Location:  location,
		Quiz: eligibility.QuizAnswers{
			Age:                 age,
			Weight:              weight,
			LastDonation:        lastDonation,
			HasChronicCondition: req.Quiz.HasChronicCondition,
			TakesMedication:     req.Quiz.TakesMedication,
			HadRecentSurgery:    req.Quiz.HadRecentSurgery,
			BloodType:           req.Quiz.BloodType,
		},
	}, nil
}

type registerDonorResponse struct {
	Donor *donor.Donor `json:"donor"`
	Token string       `json:"token"`
}

// Register handles POST /donors. A successful registration also issues the
// donor's bearer token.
func (h *donorHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[registerDonorRequest](w, r)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.donors.Register(ctx, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tok, err := h.tokens.Issue(d.ID.String(), d.Email, middleware.ActorDonor)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue donor token", "donor_id", d.ID.String(), "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerDonorResponse{Donor: d, Token: tok})
}

func (h *donorHandler) authenticatedDonorID(w http.ResponseWriter, r *http.Request) (domain.DonorID, bool) {
	id, err := domain.ParseDonorID(middleware.GetActorID(r.Context()))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid donor identity"))
		return domain.DonorID{}, false
	}
	return id, true
}

// Me handles GET /donors/me.
func (h *donorHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticatedDonorID(w, r)
	if !ok {
		return
	}
	d, err := h.donors.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

// Eligibility handles GET /donors/me/eligibility.
func (h *donorHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticatedDonorID(w, r)
	if !ok {
		return
	}
	result, err := h.donors.CheckEligibility(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// Rewards handles GET /donors/me/rewards.
func (h *donorHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticatedDonorID(w, r)
	if !ok {
		return
	}
	d, err := h.donors.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, incentive.Summarize(d.Points, d.TotalDonations, d.BloodType))
}

// Notifications handles GET /donors/me/notifications.
func (h *donorHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticatedDonorID(w, r)
	if !ok {
		return
	}
	list, err := h.notifications.ListForDonor(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": list})
}
