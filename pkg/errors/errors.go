package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes. Validation and the duplicate/not-found codes are recoverable
// business outcomes; storage and connection failures are infrastructure.
const (
	ErrValidation ErrorCode = iota + 1000
	ErrDuplicateEmail
	ErrDuplicatePhone
	ErrNotFound
	ErrStorage
	ErrConnection
)

func (c ErrorCode) String() string {
	switch c {
	case ErrValidation:
		return "validation"
	case ErrDuplicateEmail:
		return "duplicate_email"
	case ErrDuplicatePhone:
		return "duplicate_phone"
	case ErrNotFound:
		return "not_found"
	case ErrStorage:
		return "storage"
	case ErrConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Error constructors
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewDuplicateEmail(err error) *AppError {
	return &AppError{
		Code:    ErrDuplicateEmail,
		Message: "email already registered",
		Err:     err,
	}
}

func NewDuplicatePhone(err error) *AppError {
	return &AppError{
		Code:    ErrDuplicatePhone,
		Message: "phone already registered",
		Err:     err,
	}
}

func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewStorage(message string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: message,
		Err:     err,
	}
}

func NewConnection(err error) *AppError {
	return &AppError{
		Code:    ErrConnection,
		Message: "failed to connect to database",
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
