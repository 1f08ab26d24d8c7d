package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/search"
)

// CatalogBrowser covers the unauthenticated catalog reads the product
// handler needs.
type CatalogBrowser interface {
	Products(ctx context.Context) ([]domain.ProductSummary, error)
	Product(ctx context.Context, id string) (*domain.ProductSummary, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
}

// ProductHandler serves the public catalog surface. Listings run the
// filter/sort pipeline over the full upstream product list.
type ProductHandler struct {
	catalog CatalogBrowser
}

func NewProductHandler(catalog CatalogBrowser) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type ProductListResponse struct {
	Products []domain.ProductSummary `json:"products"`
	Total    int                     `json:"total"`
}

// Products handles GET /api/v1/products. Query parameters select the
// filter/sort criteria; malformed price bounds mean no bound.
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	all, err := h.catalog.Products(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	view := search.Apply(all, search.ParseCriteria(r.URL.Query()))
	writeJSON(w, http.StatusOK, ProductListResponse{Products: view, Total: len(view)})
}

// Product handles GET /api/v1/products/{id}.
func (h *ProductHandler) Product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Categories handles GET /api/v1/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Brands handles GET /api/v1/brands.
func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"brands": brands})
}
