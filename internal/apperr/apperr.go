package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors classifying every failure the service can surface.
// Call sites wrap them with fmt.Errorf("...: %w", ErrX) so handlers can
// map errors.Is checks to HTTP status codes without inspecting strings.
var (
	// ErrAuth: invalid or missing caller credential. Checked first, fails closed.
	ErrAuth = errors.New("authentication failed")
	// ErrValidation: malformed slug/access-level/version/status. Rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrStorage: blob or metadata backend unreachable or write conflict.
	ErrStorage = errors.New("storage unavailable")
	// ErrNotFound: requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: caller level is below the record's access level.
	ErrForbidden = errors.New("forbidden")
)

// HTTPStatus maps a classified error to the status code the API returns.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
