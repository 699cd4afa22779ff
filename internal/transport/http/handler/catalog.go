package handler

import (
	"log/slog"
	"net/http"

	"github.com/storefront-api/internal/application/catalog"
	"github.com/storefront-api/internal/domain"
)

// CatalogHandler serves the public read models. Both endpoints degrade to an
// empty result when the blob store is unreachable so the storefront keeps
// rendering.
type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	items, err := h.svc.ListCatalog(r.Context())
	if err != nil {
		slog.Error("catalog list failed", "err", err)
		items = nil
	}
	if items == nil {
		items = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	overrides, err := h.svc.ListOverrides(r.Context())
	if err != nil {
		slog.Error("override list failed", "err", err)
		overrides = nil
	}
	if overrides == nil {
		overrides = map[string]string{}
	}
	writeJSON(w, http.StatusOK, overrides)
}
