package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/state"
)

// CartHandler exposes the session cart mirror. Every mutation returns the
// fresh server snapshot so the caller never has to issue a follow-up read.
type CartHandler struct {
	cart *state.Cart
}

func NewCartHandler(cart *state.Cart) *CartHandler {
	return &CartHandler{cart: cart}
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	CartID     string                `json:"cart_id"`
	Items      []domain.CartLineItem `json:"items"`
	TotalPrice string                `json:"total_price"`
	ItemCount  int                   `json:"item_count"`
}

func cartResponse(snapshot *domain.CartSnapshot) CartResponse {
	if snapshot == nil {
		snapshot = &domain.CartSnapshot{}
	}
	resp := CartResponse{
		CartID:     snapshot.CartID,
		Items:      snapshot.Lines,
		TotalPrice: snapshot.TotalPrice.String(),
		ItemCount:  snapshot.ItemCount(),
	}
	if resp.Items == nil {
		resp.Items = []domain.CartLineItem{}
	}
	return resp
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	snapshot, err := h.cart.Snapshot(r.Context(), session)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(snapshot))
}

// AddItem handles POST /api/v1/cart/{productId}.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	snapshot, err := h.cart.AddItem(r.Context(), session, productID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(snapshot))
}

// UpdateItem handles PUT /api/v1/cart/{productId}. Quantities below one
// leave the cart untouched and echo the current snapshot.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := h.cart.SetItemQuantity(r.Context(), session, productID, req.Quantity)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(snapshot))
}

// RemoveItem handles DELETE /api/v1/cart/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	snapshot, err := h.cart.RemoveItem(r.Context(), session, productID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(snapshot))
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.cart.Clear(r.Context(), session); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(&domain.CartSnapshot{}))
}
