package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
)

// ErrPersistenceDisabled is returned by the stored-analysis endpoints when
// the server runs without a database
var ErrPersistenceDisabled = errors.New("persistence is not configured")

// RequestError indicates request validation failure
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError indicates a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr      *RequestError
		notFoundErr *NotFoundError
		inputErr    *pipeline.InputError
		tooLarge    *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &reqErr), errors.As(err, &inputErr),
		errors.Is(err, pipeline.ErrNoJob), errors.Is(err, pipeline.ErrNoCandidates):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
