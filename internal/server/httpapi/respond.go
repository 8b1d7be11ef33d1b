package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusvault/pyqhub/internal/common"
)

// errorBody is the stable error shape: a human-readable message plus
// optional per-field detail for validation failures.
type errorBody struct {
	Message string              `json:"message"`
	Errors  []common.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps service errors onto HTTP statuses. Anything unmapped is
// a 500 with a generic message so driver details never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "validation failed", Errors: verr.Fields})
		return
	}

	switch {
	case errors.Is(err, common.ErrPayloadTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Message: "file exceeds the maximum allowed size"})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "invalid credentials"})
	case errors.Is(err, common.ErrorForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "not found"})
	case errors.Is(err, common.ErrorConflict):
		writeJSON(w, http.StatusConflict, errorBody{Message: "already exists"})
	case errors.Is(err, common.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody{Message: "invalid status transition"})
	case errors.Is(err, common.ErrResetCodeInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid or expired reset code"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "internal server error"})
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown shapes
// with a 400-class error the caller forwards to writeError.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return common.NewValidationError(common.FieldError{Field: "body", Message: "must be valid JSON"})
	}
	return nil
}
