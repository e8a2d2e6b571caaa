package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	authservice "dastyar-dashboard/internal/auth/service"
)

// AuthHandler serves the UserAuth and FirebaseNotification endpoints.
type AuthHandler struct {
	svc     *authservice.AuthService
	metrics *Metrics
}

// NewAuthHandler returns a handler over the auth service. metrics may be nil.
func NewAuthHandler(svc *authservice.AuthService, metrics *Metrics) *AuthHandler {
	return &AuthHandler{svc: svc, metrics: metrics}
}

type sendOtpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type sendOtpData struct {
	Message string `json:"message"`
	// Code is filled only in dev mode when OTP_RETURN_TO_CLIENT is set.
	Code string `json:"code,omitempty"`
}

// SendOtpCode handles POST /UserAuth/SendOtpCode.
func (h *AuthHandler) SendOtpCode(w http.ResponseWriter, r *http.Request) {
	var req sendOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTransportError(w, r, http.StatusBadRequest, msgBadRequest)
		return
	}
	devCode, err := h.svc.SendOtpCode(r.Context(), req.PhoneNumber)
	switch {
	case err == nil:
		writeSuccess(w, r, sendOtpData{Message: msgOTPSent, Code: devCode})
	case errors.Is(err, authservice.ErrInvalidPhoneNumber):
		writeBusinessFailure(w, r, msgInvalidPhone)
	case errors.Is(err, authservice.ErrResendNotAllowed):
		writeBusinessFailure(w, r, msgResendNotAllowed)
	default:
		log.Printf("httpapi: send otp: %v", err)
		writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
	}
}

type loginByOtpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

type loginData struct {
	Token      string `json:"token"`
	FirstLogin bool   `json:"firstLogin"`
}

// LoginByOtp handles POST /UserAuth/LoginByOtp.
func (h *AuthHandler) LoginByOtp(w http.ResponseWriter, r *http.Request) {
	var req loginByOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTransportError(w, r, http.StatusBadRequest, msgBadRequest)
		return
	}
	result, err := h.svc.LoginByOtp(r.Context(), req.PhoneNumber, req.Code)
	switch {
	case err == nil:
		writeSuccess(w, r, loginData{Token: result.Token, FirstLogin: result.FirstLogin})
	case errors.Is(err, authservice.ErrInvalidPhoneNumber):
		writeBusinessFailure(w, r, msgInvalidPhone)
	case errors.Is(err, authservice.ErrInvalidCode):
		h.recordLoginFailure()
		writeBusinessFailure(w, r, msgInvalidCode)
	default:
		log.Printf("httpapi: login by otp: %v", err)
		writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
	}
}

type passwordLoginData struct {
	Token string `json:"token"`
}

// LoginByPassword handles GET /UserAuth/login?phoneNumber=...&password=...
// The query-string credential transport mirrors the consuming SPA.
func (h *AuthHandler) LoginByPassword(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phoneNumber")
	password := r.URL.Query().Get("password")
	result, err := h.svc.LoginByPassword(r.Context(), phone, password)
	switch {
	case err == nil:
		writeSuccess(w, r, passwordLoginData{Token: result.Token})
	case errors.Is(err, authservice.ErrInvalidCredentials):
		h.recordLoginFailure()
		writeBusinessFailure(w, r, msgInvalidCredentials)
	default:
		log.Printf("httpapi: password login: %v", err)
		writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
	}
}

type firebaseTokenRequest struct {
	FCMToken string `json:"fCMToken"`
}

// SendFirebaseToken handles POST /FirebaseNotification/SendFirebaseToken.
// The route policy guarantees an authenticated user.
func (h *AuthHandler) SendFirebaseToken(w http.ResponseWriter, r *http.Request) {
	var req firebaseTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTransportError(w, r, http.StatusBadRequest, msgBadRequest)
		return
	}
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeTransportError(w, r, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	err := h.svc.RegisterPushToken(r.Context(), userID, req.FCMToken)
	switch {
	case err == nil:
		writeSuccess(w, r, msgPushTokenSaved)
	case errors.Is(err, authservice.ErrPushTokenRequired):
		writeBusinessFailure(w, r, msgPushTokenRequired)
	case errors.Is(err, authservice.ErrUserNotFound):
		writeTransportError(w, r, http.StatusUnauthorized, msgUnauthorized)
	default:
		log.Printf("httpapi: register push token: %v", err)
		writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
	}
}

func (h *AuthHandler) recordLoginFailure() {
	if h.metrics != nil {
		h.metrics.RecordLoginFailure()
	}
}
