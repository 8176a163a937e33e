package service

import "errors"

// Error kinds. Every error returned by a service wraps exactly one of them.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
)

var (
	ErrFieldsRequired      = newError(ErrValidation, "All fields are required.")
	ErrCredentialsRequired = newError(ErrValidation, "Email and Password are required")
	ErrUserExists          = newError(ErrConflict, "User already exists.")
	ErrUserNotFound        = newError(ErrNotFound, "User not found")
	ErrInvalidPassword     = newError(ErrUnauthenticated, "Invalid password")
	ErrInvalidToken        = newError(ErrUnauthenticated, "Invalid or expired token")
	ErrStoryNotFound       = newError(ErrNotFound, "Story not found")
	ErrQueryRequired       = newError(ErrValidation, "Query parameter is required.")
	ErrDateRangeRequired   = newError(ErrValidation, "startDate and endDate are required.")
	ErrNoImage             = newError(ErrValidation, "No image uploaded.")
	ErrImageType           = newError(ErrValidation, "Only .png, .jpg, and .jpeg images are allowed.")
	ErrImageURLRequired    = newError(ErrValidation, "imageUrl parameter is required.")
)

// Error is a service failure carrying a message that is safe to show clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// storageError wraps an unexpected backend failure. The cause is kept for
// logging and never shown to clients.
func storageError(err error) error {
	return &Error{Kind: ErrStorage, Message: "internal server error", Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
