package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrSessionInvalid         = errors.New("invalid session")
	ErrSessionExpired         = errors.New("session expired")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidID        = errors.New("invalid identifier format")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrInvalidRole      = errors.New("invalid role")
	ErrPasswordTooLong  = errors.New("password too long")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrCatechistNotFound = errors.New("catechist not found")
)

// Student errors
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrNationalIDTaken  = errors.New("national id already registered")
	ErrLinkTargetAbsent = errors.New("no student with that national id")
)

// Group errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// IsNotFound reports whether err is any of the not-found errors.
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound, ErrUserNotFound, ErrStudentNotFound, ErrGroupNotFound, ErrCatechistNotFound)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return Is(err, ErrConflict, ErrResourceAlreadyExists, ErrUsernameTaken, ErrNationalIDTaken)
}

// IsValidation reports whether err is caused by bad input.
func IsValidation(err error) bool {
	return Is(err, ErrValidationFailed, ErrInvalidID, ErrInvalidDate, ErrInvalidRole, ErrPasswordTooLong)
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// UserMessage returns the message meant for the end user, if err carries one.
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
