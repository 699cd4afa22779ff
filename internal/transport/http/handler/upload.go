package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/storefront-api/internal/application/product"
	"github.com/storefront-api/internal/infrastructure/blob"
)

// UploadHandler handles standalone image uploads and deletions for the admin UI.
type UploadHandler struct {
	svc   product.Service
	store *blob.Store
}

func NewUploadHandler(svc product.Service, store *blob.Store) *UploadHandler {
	return &UploadHandler{svc: svc, store: store}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	img, ok := formImage(r, "file")
	if !ok {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer img.Reader.(multipart.File).Close()

	url, err := h.svc.UploadImage(r.Context(), img)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	if err := h.store.DeleteByURL(r.Context(), body.URL); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
