package catalog

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies an upstream failure into the fixed taxonomy the
// rest of the application reacts to.
type ErrorKind string

const (
	KindUnauthorized     ErrorKind = "unauthorized"
	KindForbidden        ErrorKind = "forbidden"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindValidationFailed ErrorKind = "validation_failed"
	KindRateLimited      ErrorKind = "rate_limited"
	KindServerError      ErrorKind = "server_error"
	KindNetwork          ErrorKind = "network_unreachable"
	KindUnknown          ErrorKind = "unknown"
)

// APIError is the single error type the client returns for upstream
// failures. Message is the user-facing text that was (or would be) shown
// as a notification for this failure.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog api: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("catalog api: %s: %s", e.Kind, e.Message)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == kind
}

// classify maps an HTTP status to the error taxonomy. upstreamMsg is the
// message body the Catalog API returned, used where the upstream wording
// is more specific than the fixed text (conflicts and validation).
func classify(status int, upstreamMsg string) *APIError {
	switch {
	case status == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, Status: status, Message: "Invalid or expired credentials."}
	case status == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, Status: status, Message: "You do not have permission to perform this action."}
	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Status: status, Message: "Resource not found."}
	case status == http.StatusConflict:
		return &APIError{Kind: KindConflict, Status: status, Message: orDefault(upstreamMsg, "Request conflicts with existing data.")}
	case status == http.StatusUnprocessableEntity:
		return &APIError{Kind: KindValidationFailed, Status: status, Message: orDefault(upstreamMsg, "Submitted data failed validation.")}
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Status: status, Message: "Too many requests. Please try again later."}
	case status >= 500:
		return &APIError{Kind: KindServerError, Status: status, Message: "Server error. Please try again later."}
	default:
		return &APIError{Kind: KindUnknown, Status: status, Message: orDefault(upstreamMsg, "An unexpected error occurred.")}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
