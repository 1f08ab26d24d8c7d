package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeUpstreamError maps an error from the state/catalog layer to the
// gateway's own status code. Upstream 401 surfaces as 401 here too: the
// session is already torn down by the time the handler sees the error.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) {
		writeError(w, gatewayStatus(apiErr), apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, domain.ErrStockExhausted):
		writeError(w, http.StatusConflict, "No more stock available for this product.")
	case errors.Is(err, domain.ErrQuantityTooLow):
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
	default:
		writeError(w, http.StatusBadGateway, "Upstream request failed")
	}
}

func gatewayStatus(apiErr *catalog.APIError) int {
	switch apiErr.Kind {
	case catalog.KindUnauthorized:
		return http.StatusUnauthorized
	case catalog.KindForbidden:
		return http.StatusForbidden
	case catalog.KindNotFound:
		return http.StatusNotFound
	case catalog.KindConflict:
		return http.StatusConflict
	case catalog.KindValidationFailed:
		return http.StatusBadRequest
	case catalog.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
