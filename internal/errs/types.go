package errs

import (
	"net/http"
)

// statusCode derives the default machine code for a status,
// e.g. 404 -> "NOT_FOUND".
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// newError builds an HTTPError, using code when given and the status text otherwise.
func newError(status int, message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(status)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newError(http.StatusUnauthorized, message, override, nil)
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return newError(http.StatusForbidden, message, override, nil)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default "BAD_REQUEST", errors carries field-level
// validation errors and action an optional client instruction.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	err := newError(http.StatusBadRequest, message, override, code)
	err.Errors = errors
	err.Action = action
	return err
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newError(http.StatusNotFound, message, override, code)
}

// NewConflictError creates a 409 Conflict HTTPError, used when a unique
// resource (like an email address) already exists.
func NewConflictError(message string, override bool, code *string) *HTTPError {
	return newError(http.StatusConflict, message, override, code)
}

// NewPayloadTooLargeError creates a 413 Request Entity Too Large HTTPError.
func NewPayloadTooLargeError(message string) *HTTPError {
	return newError(http.StatusRequestEntityTooLarge, message, true, nil)
}

// NewUnsupportedMediaTypeError creates a 415 Unsupported Media Type HTTPError.
func NewUnsupportedMediaTypeError(message string) *HTTPError {
	return newError(http.StatusUnsupportedMediaType, message, true, nil)
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return newError(http.StatusTooManyRequests, message, true, nil)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text; the real cause only goes to logs.
func NewInternalServerError() *HTTPError {
	return newError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// Ptr returns a pointer to s, handy for the optional code arguments.
func Ptr(s string) *string {
	return &s
}
