package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/state"
)

// OrderAPI is the slice of the catalog client the order handler needs.
type OrderAPI interface {
	Orders(ctx context.Context, token string) ([]domain.Order, error)
	CreateCashOrder(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) error
	CheckoutSession(ctx context.Context, token, cartID, returnURL string, shipping domain.ShippingAddress) (string, error)
}

// OrderHandler places orders against the upstream and drops the session's
// cart mirror afterwards; the upstream consumes the cart on order creation.
type OrderHandler struct {
	api       OrderAPI
	cart      *state.Cart
	returnURL string
}

func NewOrderHandler(api OrderAPI, cart *state.Cart, returnURL string) *OrderHandler {
	return &OrderHandler{api: api, cart: cart, returnURL: returnURL}
}

type ShippingAddressRequest struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

func (r ShippingAddressRequest) validate() string {
	if strings.TrimSpace(r.Details) == "" {
		return "Shipping details are required"
	}
	if strings.TrimSpace(r.Phone) == "" {
		return "Shipping phone is required"
	}
	if strings.TrimSpace(r.City) == "" {
		return "Shipping city is required"
	}
	return ""
}

func (r ShippingAddressRequest) shipping() domain.ShippingAddress {
	return domain.ShippingAddress{
		Details: strings.TrimSpace(r.Details),
		Phone:   strings.TrimSpace(r.Phone),
		City:    strings.TrimSpace(r.City),
	}
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	orders, err := h.api.Orders(r.Context(), session.APIToken)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// CreateCash handles POST /api/v1/orders/{cartId}. The upstream consumes
// the cart, so the local mirror is dropped and rebuilt on the next read.
func (h *OrderHandler) CreateCash(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	cartID := chi.URLParam(r, "cartId")
	if cartID == "" {
		writeError(w, http.StatusBadRequest, "Cart id is required")
		return
	}

	var req ShippingAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.api.CreateCashOrder(r.Context(), session.APIToken, cartID, req.shipping()); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.cart.Drop(session.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Order placed"})
}

// Checkout handles POST /api/v1/orders/checkout-session/{cartId} and
// returns the hosted payment page URL.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	cartID := chi.URLParam(r, "cartId")
	if cartID == "" {
		writeError(w, http.StatusBadRequest, "Cart id is required")
		return
	}

	var req ShippingAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	url, err := h.api.CheckoutSession(r.Context(), session.APIToken, cartID, h.returnURL, req.shipping())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutSessionResponse{URL: url})
}
