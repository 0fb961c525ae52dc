package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

var (
	// ErrValidation covers malformed input: bad email, bad month, invalid split shape.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized covers missing, malformed, expired or revoked credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidReference means a row or parent is missing, soft-deleted or owned by
	// someone else; callers cannot tell which.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound hides disabled features.
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// StatusFor maps a service error onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint failure.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// WriteError writes err as a JSON error response. Only validation errors carry
// their message to the client; storage errors are logged and reported generically.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErrs)
	case status == http.StatusBadRequest && errors.Is(err, ErrValidation):
		SendErrorResponse(w, err.Error(), status, nil)
	case status == http.StatusInternalServerError:
		log.Printf("[API] Internal error: %v", err)
		SendErrorResponse(w, "An Internal Error Occurred", status, nil)
	default:
		SendErrorResponse(w, http.StatusText(status), status, nil)
	}
}
