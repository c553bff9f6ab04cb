package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/ingestion"
	"github.com/jonathan/profile-builder/internal/llm"
	"github.com/jonathan/profile-builder/internal/profile"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrForbidden indicates the caller may not act on another user's data.
type ErrForbidden struct{}

func (e *ErrForbidden) Error() string {
	return "forbidden"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		invalidCreds *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userNotFound *ErrUserNotFound
		validation   *ErrValidation
		forbidden    *ErrForbidden
		entity       *profile.ValidationError
		tooLarge     *http.MaxBytesError
		posting      *documents.PostingError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists), errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &userNotFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &entity),
		errors.Is(err, profile.ErrUnknownField), errors.Is(err, ingestion.ErrNotPDF):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.As(err, &posting):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the error envelope. Fields is set for per-field validation failures.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newErrorBody builds the envelope for err. Internal errors are not echoed to the client.
func newErrorBody(err error, status int) errorBody {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable && status != http.StatusBadGateway {
		return errorBody{Error: "internal server error"}
	}

	var posting *documents.PostingError
	if errors.As(err, &posting) {
		// The cause may describe hosts and ports the server could reach.
		return errorBody{Error: "could not read job posting"}
	}

	body := errorBody{Error: err.Error()}
	var validation *ErrValidation
	if errors.As(err, &validation) {
		body.Error = "validation failed"
		body.Fields = map[string]string{validation.Field: validation.Message}
	}
	if ve, ok := profile.AsValidationError(err); ok {
		body.Error = "validation failed"
		body.Fields = ve.Fields
	}
	return body
}
