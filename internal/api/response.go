package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/model"
	"stealthcompany.com/care-vitals/internal/validation"
)

const (
	msgPatientNotFound  = "Patient not found"
	msgValidationFailed = "Validation failed"
	msgInternalError    = "Internal server error"
	msgNoVitals         = "No vitals recorded yet"
)

// SuccessResponse is the envelope of every 2xx answer
type SuccessResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// ErrorResponse is the envelope of every 4xx/5xx answer
type ErrorResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// writeError maps err onto a status code. failMessage is used for
// anything that is neither a validation failure nor a missing record.
func writeError(w http.ResponseWriter, r *http.Request, err error, failMessage string) {
	var fieldErrs validation.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: msgValidationFailed,
			Errors:  fieldErrs,
		})
	case errors.Is(err, dal.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: msgPatientNotFound})
	default:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(failMessage)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Message: failMessage,
			Error:   err.Error(),
		})
	}
}
