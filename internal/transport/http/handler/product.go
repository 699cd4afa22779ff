package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/storefront-api/internal/application/product"
)

const maxUploadBytes = 32 << 20

// ProductHandler exposes the admin product write path. Authorization happens
// in the router's middleware group, not here.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := product.CreateInput{
		ID:       r.FormValue("id"),
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		ImageURL: r.FormValue("imageUrl"),
	}
	in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	if v := r.FormValue("order"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			in.Order = &f
		}
	}
	if v := r.FormValue("active"); v != "" {
		b := parseBool(v)
		in.Active = &b
	}
	if img, ok := formImage(r, "file"); ok {
		defer img.Reader.(multipart.File).Close()
		in.Image = &img
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	var in product.UpdateInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		in.ID = r.FormValue("id")
		if v := r.FormValue("name"); v != "" {
			in.Name = &v
		}
		if v := r.FormValue("category"); v != "" {
			in.Category = &v
		}
		if v := r.FormValue("price"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				in.Price = &f
			}
		}
		if v := r.FormValue("order"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				in.Order = &f
			}
		}
		if v := r.FormValue("active"); v != "" {
			b := parseBool(v)
			in.Active = &b
		}
		if v := r.FormValue("imageUrl"); v != "" {
			in.ImageURL = &v
		}
		if img, ok := formImage(r, "file"); ok {
			defer img.Reader.(multipart.File).Close()
			in.Image = &img
		}
	} else {
		var body struct {
			ID       string   `json:"id"`
			Name     *string  `json:"name"`
			Category *string  `json:"category"`
			Price    *float64 `json:"price"`
			Order    *float64 `json:"order"`
			Active   *bool    `json:"active"`
			ImageURL *string  `json:"imageUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in = product.UpdateInput{
			ID:       body.ID,
			Name:     body.Name,
			Category: body.Category,
			Price:    body.Price,
			Order:    body.Order,
			Active:   body.Active,
			ImageURL: body.ImageURL,
		}
	}

	p, err := h.svc.Update(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	var body struct {
		ID          string `json:"id"`
		DeleteImage bool   `json:"deleteImage"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Delete(r.Context(), body.ID, body.DeleteImage, body.ImageURL); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

// formImage pulls an uploaded file out of a parsed multipart form.
func formImage(r *http.Request, field string) (product.ImageUpload, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return product.ImageUpload{}, false
	}
	return product.ImageUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "on"
	}
	return b
}
