package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
)

// AddressAPI is the slice of the catalog client the address handler needs.
type AddressAPI interface {
	Addresses(ctx context.Context, token string) ([]domain.Address, error)
	AddAddress(ctx context.Context, token string, fields catalog.AddressFields) error
	UpdateAddress(ctx context.Context, token, id string, fields catalog.AddressFields) error
	DeleteAddress(ctx context.Context, token, id string) error
}

// AddressHandler manages the shopper's saved shipping addresses. The
// upstream owns the collection; mutations return the refreshed list.
type AddressHandler struct {
	api AddressAPI
}

func NewAddressHandler(api AddressAPI) *AddressHandler {
	return &AddressHandler{api: api}
}

type AddressRequest struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

func (r AddressRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "Address name is required"
	}
	if strings.TrimSpace(r.Details) == "" {
		return "Address details are required"
	}
	if strings.TrimSpace(r.City) == "" {
		return "Address city is required"
	}
	return ""
}

func (r AddressRequest) fields() catalog.AddressFields {
	return catalog.AddressFields{
		Name:    strings.TrimSpace(r.Name),
		Details: strings.TrimSpace(r.Details),
		Phone:   strings.TrimSpace(r.Phone),
		City:    strings.TrimSpace(r.City),
	}
}

func (h *AddressHandler) list(ctx context.Context, w http.ResponseWriter, token string, status int) {
	addresses, err := h.api.Addresses(ctx, token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if addresses == nil {
		addresses = []domain.Address{}
	}
	writeJSON(w, status, map[string]any{"addresses": addresses})
}

// List handles GET /api/v1/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	h.list(r.Context(), w, session.APIToken, http.StatusOK)
}

// Create handles POST /api/v1/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.api.AddAddress(r.Context(), session.APIToken, req.fields()); err != nil {
		writeUpstreamError(w, err)
		return
	}
	h.list(r.Context(), w, session.APIToken, http.StatusCreated)
}

// Update handles PUT /api/v1/addresses/{id}.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Address id is required")
		return
	}

	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.api.UpdateAddress(r.Context(), session.APIToken, id, req.fields()); err != nil {
		writeUpstreamError(w, err)
		return
	}
	h.list(r.Context(), w, session.APIToken, http.StatusOK)
}

// Delete handles DELETE /api/v1/addresses/{id}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Address id is required")
		return
	}

	if err := h.api.DeleteAddress(r.Context(), session.APIToken, id); err != nil {
		writeUpstreamError(w, err)
		return
	}
	h.list(r.Context(), w, session.APIToken, http.StatusOK)
}
