package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-api/internal/infrastructure/blob"
	"github.com/storefront-api/internal/transport/http/middleware"
)

const healthProbeKey = blob.OverridePrefix + ".health.txt"

// HealthHandler reports configuration and blob-store reachability. It sits
// outside the admin gate on purpose: identity diagnostics are half the point,
// so it reports why the caller is not an admin instead of rejecting them.
type HealthHandler struct {
	gate  middleware.AdminGate
	store *blob.Store
	envOK bool
}

func NewHealthHandler(gate middleware.AdminGate, store *blob.Store, envOK bool) *HealthHandler {
	return &HealthHandler{gate: gate, store: store, envOK: envOK}
}

type healthReport struct {
	OK    bool        `json:"ok"`
	Env   bool        `json:"env"`
	Admin adminReport `json:"admin"`
	Blob  *blobReport `json:"blob,omitempty"`
}

type adminReport struct {
	OK     bool   `json:"ok"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type blobReport struct {
	List bool   `json:"list"`
	Put  bool   `json:"put"`
	Err  string `json:"err,omitempty"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	check := h.gate.IsAdmin(cookieValue(r, middleware.SIDCookie))
	report := healthReport{
		Env:   h.envOK,
		Admin: adminReport{OK: check.OK, Email: check.Email, Reason: check.Reason},
	}

	// Store probes only run for a verified admin; anonymous callers still get
	// the identity diagnostics above.
	if check.OK {
		report.Blob = h.probeBlob(r.Context())
	}

	report.OK = report.Env && (report.Blob == nil || (report.Blob.List && report.Blob.Put))
	writeJSON(w, http.StatusOK, report)
}

func (h *HealthHandler) probeBlob(ctx context.Context) *blobReport {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var rep blobReport
	if _, err := h.store.List(ctx, blob.MetaPrefix); err != nil {
		rep.Err = err.Error()
	} else {
		rep.List = true
	}
	if _, err := h.store.Put(ctx, healthProbeKey, strings.NewReader("ok"), "text/plain"); err != nil {
		if rep.Err == "" {
			rep.Err = err.Error()
		}
	} else {
		rep.Put = true
	}
	return &rep
}
