// Package server is the backend-for-frontend: a small HTTP service that
// serves presentable scores and assembled views on top of the matching
// backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/careermatch/internal/api"
	"github.com/jonathan/careermatch/internal/session"
	"github.com/jonathan/careermatch/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErr      *types.FieldError
		validatorErrs validator.ValidationErrors
		statusErr     *api.StatusError
		decodeErr     *api.DecodeError
		requestErr    *api.RequestError
	)

	// Backend faults come first: a bad payload may wrap validator errors.
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return statusErr.StatusCode
		default:
			return http.StatusBadGateway
		}
	case errors.As(err, &decodeErr), errors.As(err, &requestErr):
		return http.StatusBadGateway
	case errors.As(err, &validationErr), errors.As(err, &fieldErr), errors.As(err, &validatorErrs):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
