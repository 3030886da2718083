// Package types provides the request and response shapes exchanged with the
// matching backend, validated at the API boundary.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New()

// SignupRequest represents the request to register a new account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued by the backend.
type LoginResponse struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

// Validate validates the SignupRequest using the validator.
func (r *SignupRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginResponse using the validator.
func (r *LoginResponse) Validate() error {
	return validate.Struct(r)
}

// Validator is implemented by every validated payload.
type Validator interface {
	Validate() error
}

// ValidateAll validates each element of a decoded list payload.
func ValidateAll[T any, P interface {
	*T
	Validator
}](items []T) error {
	for i := range items {
		if err := P(&items[i]).Validate(); err != nil {
			return &ItemError{Index: i, Cause: err}
		}
	}
	return nil
}

// ItemError reports which element of a list payload failed validation.
type ItemError struct {
	Index int
	Cause error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Cause)
}

func (e *ItemError) Unwrap() error {
	return e.Cause
}

// FieldError is a client-side validation failure that no validator tag expresses.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}
