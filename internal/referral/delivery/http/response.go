package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-referral/internal/referral/domain"
	"go-referral/pkg/problemdetails"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeProblem writes an RFC 7807 Problem Details response
func writeProblem(w http.ResponseWriter, problem *problemdetails.ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	json.NewEncoder(w).Encode(problem)
}

// writeValidation turns ozzo field errors into a validation problem.
func writeValidation(w http.ResponseWriter, err error) {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			err.Error(),
		))
		return
	}

	fieldErrors := make([]problemdetails.FieldError, 0, len(fields))
	for field, fieldErr := range fields {
		fieldErrors = append(fieldErrors, problemdetails.FieldError{Field: field, Message: fieldErr.Error()})
	}
	writeProblem(w, problemdetails.NewValidation(fieldErrors))
}

// writeError maps engine errors onto problem responses.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			err.Error(),
		))
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, problemdetails.New(
			http.StatusNotFound,
			problemdetails.TypeNotFound,
			"Not Found",
			"No account matches the request",
		))
	case errors.Is(err, domain.ErrGenerationExhausted):
		w.Header().Set("Retry-After", "1")
		writeProblem(w, problemdetails.New(
			http.StatusServiceUnavailable,
			problemdetails.TypeServiceUnavailable,
			"Service Unavailable",
			"Could not allocate a referral code, retry the request",
		))
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.Error("referral store unavailable", zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusServiceUnavailable,
			problemdetails.TypeServiceUnavailable,
			"Service Unavailable",
			"Referral storage is unavailable",
		))
	default:
		logger.Error("unexpected referral error", zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Internal server error",
		))
	}
}
