package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// OTPCookie is the short-lived cookie carrying the hashed one-time code.
const OTPCookie = "otp"

const otpCookieMaxAge = 10 * 60 // seconds

// AuthHandler handles the passwordless login flow and session endpoints.
type AuthHandler struct {
	svc    auth.Service
	secure bool // Secure cookie attribute; off outside production
}

func NewAuthHandler(svc auth.Service, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, secure: secure}
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	otpCookie, err := h.svc.RequestOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setCookie(w, OTPCookie, otpCookie, otpCookieMaxAge)
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawOTP := cookieValue(r, OTPCookie)
	if rawOTP != "" {
		// The code is single-use: any verification attempt consumes it,
		// successful or not.
		h.clearCookie(w, OTPCookie)
	}

	sid, _, err := h.svc.VerifyOTP(r.Context(), rawOTP, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setCookie(w, middleware.SIDCookie, sid, int(auth.SessionTTL.Seconds()))
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.svc.Identify(cookieValue(r, middleware.SIDCookie))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.SessionUser{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, middleware.SIDCookie)
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
