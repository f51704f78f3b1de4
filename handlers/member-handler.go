package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"member-service/gate"
	"member-service/membernum"
	"member-service/middleware"
	"member-service/models"
)

type JSONResponse map[string]interface{}

// TermsGate is the gate surface the handlers consume.
type TermsGate interface {
	Check(ctx context.Context, user *models.User) gate.CheckResult
	Accept(ctx context.Context, user *models.User) bool
	CurrentVersion() string
}

type MemberHandler struct {
	gate TermsGate
}

func NewMemberHandler(termsGate TermsGate) *MemberHandler {
	return &MemberHandler{gate: termsGate}
}

type profileResponse struct {
	*models.Profile
	MemberNumberDisplay string `json:"memberNumberDisplay,omitempty"`
}

func newProfileResponse(profile *models.Profile) *profileResponse {
	return &profileResponse{
		Profile:             profile,
		MemberNumberDisplay: membernum.Format(profile.CoopMemberNumber),
	}
}

// TermsHandler reports the terms version currently in force. Public.
func (h *MemberHandler) TermsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(JSONResponse{"version": h.gate.CurrentVersion()})
	return nil
}

// CheckTermsHandler runs the gate check for the authenticated user,
// bootstrapping the profile on first contact.
func (h *MemberHandler) CheckTermsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	user := middleware.UserFromContext(r.Context())

	result := h.gate.Check(r.Context(), user)
	response := JSONResponse{"termsAccepted": result.TermsAccepted}
	if result.Profile != nil {
		response["profile"] = newProfileResponse(result.Profile)
	}
	json.NewEncoder(w).Encode(response)
	return nil
}

// AcceptTermsHandler records acceptance of the current terms version. A
// failed acceptance is a retryable condition, not a server fault, so it
// answers 409 with accepted=false rather than an error body.
func (h *MemberHandler) AcceptTermsHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	user := middleware.UserFromContext(r.Context())

	if !h.gate.Accept(r.Context(), user) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(JSONResponse{"accepted": false})
		return nil
	}

	json.NewEncoder(w).Encode(JSONResponse{"accepted": true})
	return nil
}

// ProfileHandler returns the caller's profile, creating it lazily on first
// access.
func (h *MemberHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	user := middleware.UserFromContext(r.Context())

	result := h.gate.Check(r.Context(), user)
	if result.Profile == nil {
		return middleware.NewAppError(http.StatusServiceUnavailable, "Profile unavailable", nil)
	}

	json.NewEncoder(w).Encode(newProfileResponse(result.Profile))
	return nil
}
