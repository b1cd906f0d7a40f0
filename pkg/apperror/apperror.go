package apperror

import (
	"errors"
	"net/http"
)

// FieldError carries field-level detail for validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried from services up to the HTTP boundary.
// Status decides the response code; Message is safe to return to the caller.
type Error struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

var (
	ErrUnauthenticated   = &Error{Status: http.StatusUnauthorized, Message: "authentication required"}
	ErrInvalidCredential = &Error{Status: http.StatusUnauthorized, Message: "invalid or expired credential"}
	ErrInactiveUser      = &Error{Status: http.StatusUnauthorized, Message: "user account is inactive"}
	ErrForbidden         = &Error{Status: http.StatusForbidden, Message: "access denied"}
	ErrNotFound          = &Error{Status: http.StatusNotFound, Message: "resource not found"}
)

// Validation builds a 400 error carrying field-level details.
func Validation(fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// InvalidStakeholderReference reports a stakeholder reference that does not
// resolve to an existing entity of the given type.
func InvalidStakeholderReference(stakeholderType string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "stakeholder reference does not resolve for type " + stakeholderType}
}

// MissingUnit reports that no owning unit could be resolved for the request.
func MissingUnit() *Error {
	return &Error{Status: http.StatusBadRequest, Message: "no owning unit could be resolved"}
}

// Internal wraps an unexpected collaborator failure. The cause is kept for
// logging; the message exposed to the caller stays generic.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error", cause: cause}
}

// From extracts the *Error from err, mapping unknown errors to Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
