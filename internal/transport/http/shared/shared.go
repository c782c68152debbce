// Package shared holds the JSON envelope helpers used by every handler so
// error translation stays consistent across endpoints.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "udyam/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error to its HTTP status and JSON
// envelope. Unknown errors become opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{
		Code:    string(code),
		Message: "internal server error",
		Field:   dErrors.FieldOf(err),
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) && code != dErrors.CodeInternal {
		body.Message = dErr.Message
	}
	WriteJSON(w, httpStatus(code), map[string]ErrorBody{"error": body})
}

func httpStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeOTPInvalid, dErrors.CodePrecondition, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
