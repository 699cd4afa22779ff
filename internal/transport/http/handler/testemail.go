package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/storefront-api/internal/infrastructure/resend"
)

// TestEmailHandler sends a probe email so admins can verify the provider
// wiring. Recipients are restricted to the admin allow-list to keep the
// endpoint from becoming a mail relay.
type TestEmailHandler struct {
	mailer resend.Mailer
	admins map[string]bool
}

func NewTestEmailHandler(mailer resend.Mailer, adminEmails []string) *TestEmailHandler {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &TestEmailHandler{mailer: mailer, admins: admins}
}

func (h *TestEmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	var body struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.To == "" {
		writeError(w, http.StatusBadRequest, "to required")
		return
	}
	if !h.admins[strings.ToLower(body.To)] {
		writeError(w, http.StatusForbidden, "recipient is not an admin")
		return
	}

	err := h.mailer.SendEmail(r.Context(), body.To,
		"Test email", "If you can read this, outbound email works.")
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
