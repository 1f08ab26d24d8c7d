package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/state"
)

// WishlistHandler exposes the session wishlist mirror.
type WishlistHandler struct {
	wishlist *state.Wishlist
}

func NewWishlistHandler(wishlist *state.Wishlist) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

type WishlistAddRequest struct {
	ProductID string `json:"product_id"`
}

type WishlistResponse struct {
	Products []domain.ProductSummary `json:"products"`
}

func wishlistResponse(snapshot *domain.WishlistSnapshot) WishlistResponse {
	resp := WishlistResponse{}
	if snapshot != nil {
		resp.Products = snapshot.Items
	}
	if resp.Products == nil {
		resp.Products = []domain.ProductSummary{}
	}
	return resp
}

// Get handles GET /api/v1/wishlist.
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	snapshot, err := h.wishlist.Snapshot(r.Context(), session)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse(snapshot))
}

// AddItem handles POST /api/v1/wishlist.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req WishlistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	snapshot, err := h.wishlist.AddItem(r.Context(), session, req.ProductID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse(snapshot))
}

// RemoveItem handles DELETE /api/v1/wishlist/{productId}.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
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

	snapshot, err := h.wishlist.RemoveItem(r.Context(), session, productID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse(snapshot))
}
