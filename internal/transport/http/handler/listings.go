package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/materio/backend/internal/application/listing"
	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/transport/http/middleware"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 8 << 20

// ListingHandler handles listing CRUD and lifecycle endpoints.
type ListingHandler struct {
	svc listing.Service
}

func NewListingHandler(svc listing.Service) *ListingHandler { return &ListingHandler{svc: svc} }

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.svc.Create(r.Context(), claims.UserID, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Data: l})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: l})
}

func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	listings, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: listings})
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: l})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "listing deleted"})
}

func (h *ListingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Publish)
}

func (h *ListingHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Archive)
}

func (h *ListingHandler) transition(w http.ResponseWriter, r *http.Request,
	move func(ctx context.Context, userID, listingID string) (*domain.Listing, error)) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	l, err := move(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: l})
}

func (h *ListingHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "image", h.svc.UploadImage)
}

func (h *ListingHandler) UploadCertification(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "certification", h.svc.UploadCertification)
}

func (h *ListingHandler) upload(w http.ResponseWriter, r *http.Request, field string,
	store func(ctx context.Context, userID, listingID string, f io.Reader, size int64, contentType string) (string, error)) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing "+field+" file")
		return
	}
	defer file.Close()

	url, err := store(r.Context(), claims.UserID, chi.URLParam(r, "id"),
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Data: map[string]string{"url": url}})
}

// FileURL resolves a stored object key to a presigned GET URL.
func (h *ListingHandler) FileURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key")
		return
	}
	url, err := h.svc.FileURL(r.Context(), chi.URLParam(r, "id"), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: map[string]string{"url": url}})
}

func (h *ListingHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key")
		return
	}
	if err := h.svc.DeleteFile(r.Context(), claims.UserID, chi.URLParam(r, "id"), key); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "file deleted"})
}

// Search serves the public listing browse with optional query-string
// filters. Unparseable numeric filters are rejected rather than ignored.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	f := domain.CandidateFilter{}
	q := r.URL.Query()

	if v := q.Get("category_id"); v != "" {
		f.CategoryID = &v
	}
	if v := q.Get("condition"); v != "" {
		f.Condition = &v
	}
	for param, dst := range map[string]**float64{
		"price_min":    &f.PriceMin,
		"price_max":    &f.PriceMax,
		"quantity_min": &f.QuantityMin,
		"quantity_max": &f.QuantityMax,
	} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+param)
			return
		}
		*dst = &n
	}

	listings, err := h.svc.Search(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: listings})
}
