package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gisoinvest/auth-service/internal/service"
)

// Stable error codes surfaced to clients.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidSession      = "INVALID_SESSION"
	CodeInternalError       = "INTERNAL_ERROR"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeServiceError maps service errors onto the error taxonomy. Anything
// unrecognized becomes a 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, CodeInvalidInput, ve.Error())
	case errors.Is(err, service.ErrIdentifierTaken):
		writeError(w, http.StatusConflict, CodeDuplicateIdentifier, "username or email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, service.ErrSessionInvalid):
		writeError(w, http.StatusUnauthorized, CodeInvalidSession, "invalid or expired session")
	case errors.Is(err, service.ErrUserNotFound):
		// A session can outlive its user only across an out-of-band delete;
		// treat it as an auth failure rather than an internal one.
		writeError(w, http.StatusUnauthorized, CodeInvalidSession, "invalid or expired session")
	default:
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}
