package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/storefront-api/internal/application/override"
)

// OverrideHandler manages the per-product image override records.
type OverrideHandler struct {
	svc override.Service
}

func NewOverrideHandler(svc override.Service) *OverrideHandler {
	return &OverrideHandler{svc: svc}
}

func (h *OverrideHandler) Set(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	img, ok := formImage(r, "file")
	if ok {
		defer img.Reader.(multipart.File).Close()
	}

	url, err := h.svc.Set(r.Context(), r.FormValue("productId"), img)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *OverrideHandler) Clear(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	var body struct {
		ProductID string `json:"productId"`
		BlobURL   string `json:"blobUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Clear(r.Context(), body.ProductID, body.BlobURL); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
