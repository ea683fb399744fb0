package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elousi1010/quanlyveso-sub000/authapi"
	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

// statusFor maps a domain error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest),
		errors.Is(err, apperrors.ErrInvalidPhoneNumber):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrMalformedToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrInvalidRefreshToken),
		errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPhoneNumberTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Internal errors are logged
// and their detail withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "Internal server error"
	}
	writeErrorMessage(w, status, message)
}

func writeErrorMessage(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, authapi.ErrorResponse{
		StatusCode: status,
		Message:    authapi.Message(messages),
		Error:      http.StatusText(status),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

// decodeJSON reads r's body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
