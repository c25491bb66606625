package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/store"
	"github.com/conduit-lang/attrkit/internal/workspace"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func renderJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// renderError renders err with the status its kind maps to
func renderError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	renderJSON(w, status, &ErrorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    errorCodeFromStatus(status),
	})
}

func statusFromError(err error) int {
	switch {
	case store.IsNotFound(err):
		return http.StatusNotFound
	case store.IsExists(err):
		return http.StatusConflict
	case errors.Is(err, xmlio.ErrDocumentFatal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workspace.ErrNameRequired), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorCodeFromStatus generates an error code from HTTP status
func errorCodeFromStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	default:
		return "internal_error"
	}
}
