package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/infrastructure/synctoken"
	"github.com/storefront-api/internal/transport/http/middleware"
)

// SyncTokenHandler exchanges a verified session for cart-sync access tokens.
type SyncTokenHandler struct {
	svc      auth.Service
	provider *synctoken.Provider
}

func NewSyncTokenHandler(svc auth.Service, provider *synctoken.Provider) *SyncTokenHandler {
	return &SyncTokenHandler{svc: svc, provider: provider}
}

func (h *SyncTokenHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	user, ok := h.svc.Identify(cookieValue(r, middleware.SIDCookie))
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		PublicKey string `json:"public_key"`
	}
	// An empty body is fine; the public key is optional.
	_ = json.NewDecoder(r.Body).Decode(&body)

	tokens, err := h.provider.FetchTokens(r.Context(), body.PublicKey, user)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tokens)
}
