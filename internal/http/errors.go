// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/checkout"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps core errors onto distinct HTTP statuses and
// machine-readable codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *catalog.InsufficientStockError
	var valErr *checkout.ValidationError
	switch {
	case errors.As(err, &valErr):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", valErr.Reason)
	case errors.Is(err, catalog.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrEmptySession):
		WriteJSONError(w, http.StatusConflict, "empty_session", err.Error())
	case errors.As(err, &stockErr):
		WriteJSONError(w, http.StatusConflict, "insufficient_stock", stockErr.Error())
	case errors.Is(err, catalog.ErrUnavailable):
		WriteJSONError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
