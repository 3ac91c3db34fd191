package httptransport

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"donorlink/internal/clinic"
	"donorlink/internal/platform/middleware"
	"donorlink/internal/token"
	"donorlink/pkg/domain"
	dErrors "donorlink/pkg/domain-errors"
	"donorlink/pkg/platform/httputil"
)

type clinicHandler struct {
	clinics *clinic.Service
	tokens  *token.Service
	logger  *slog.Logger
}

type registerClinicRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	LicenseNumber string  `json:"license_number"`
	Password      string  `json:"password"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

type registerClinicResponse struct {
	Clinic *clinic.Clinic `json:"clinic"`
	Token  string         `json:"token"`
}

// Register handles POST /clinics.
func (h *clinicHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[registerClinicRequest](w, r)
	if !ok {
		return
	}
	if len(req.Password) < 8 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters"))
		return
	}
	location, err := domain.NewCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.clinics.Register(ctx, clinic.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		LicenseNumber:  req.LicenseNumber,
		Location:       location,
		CredentialHash: hashCredential(req.Password),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tok, err := h.tokens.Issue(c.ID.String(), c.Email, middleware.ActorClinic)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue clinic token", "clinic_id", c.ID.String(), "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerClinicResponse{Clinic: c, Token: tok})
}

type clinicLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/clinic/login. Unknown email and wrong password
// produce the same response.
func (h *clinicHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[clinicLoginRequest](w, r)
	if !ok {
		return
	}

	c, err := h.clinics.GetByEmail(ctx, req.Email)
	if err != nil || !credentialMatches(c.CredentialHash, req.Password) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	tok, err := h.tokens.Issue(c.ID.String(), c.Email, middleware.ActorClinic)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue clinic token", "clinic_id", c.ID.String(), "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func hashCredential(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func credentialMatches(storedHash, password string) bool {
	candidate := hashCredential(password)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1
}
