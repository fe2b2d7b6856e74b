package global

import "errors"

// Error kinds. Stores wrap these, services attach a caller-safe message via
// Error, and the router maps the kind to a status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrNoData             = errors.New("no data found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Error is a client-facing failure. Message is safe to return to callers.
type Error struct {
	Kind    error
	Message string
	Fields  []ValidationError
}

func NewError(kind error, message string, fields ...ValidationError) *Error {
	return &Error{Kind: kind, Message: message, Fields: fields}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
