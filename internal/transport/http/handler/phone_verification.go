package handler

import (
	"encoding/json"
	"net/http"

	"github.com/materio/backend/internal/application/phoneverify"
	"github.com/materio/backend/internal/pkg/validate"
)

// PhoneVerificationHandler handles OTP request and verification endpoints.
type PhoneVerificationHandler struct {
	svc phoneverify.Service
}

func NewPhoneVerificationHandler(svc phoneverify.Service) *PhoneVerificationHandler {
	return &PhoneVerificationHandler{svc: svc}
}

type requestCodeBody struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type verifyCodeBody struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *PhoneVerificationHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body requestCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestCode(r.Context(), body.Phone); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *PhoneVerificationHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body verifyCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.VerifyCode(r.Context(), body.Phone, body.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "phone verified"})
}
