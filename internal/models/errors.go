package models

import (
	"fmt"
)

// Error codes surfaced to callers of the domain layer.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeUserExists         = "USER_EXISTS"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeWrongAnswer        = "WRONG_ANSWER"
	CodeNotLoggedIn        = "NOT_LOGGED_IN"
	CodeNotOwner           = "NOT_OWNER"
	CodeAdminOnly          = "ADMIN_ONLY"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrNotOwner) holds for any NOT_OWNER error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for each failure kind of the domain layer.
var (
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "Invalid credentials"}
	ErrAccountDeactivated = &AppError{Code: CodeAccountDeactivated, Message: "Account is deactivated by admin"}
	ErrUserExists         = &AppError{Code: CodeUserExists, Message: "User exists"}
	ErrAccountNotFound    = &AppError{Code: CodeAccountNotFound, Message: "Account not found"}
	ErrWrongAnswer        = &AppError{Code: CodeWrongAnswer, Message: "Wrong answer"}
	ErrNotLoggedIn        = &AppError{Code: CodeNotLoggedIn, Message: "Not logged in"}
	ErrNotOwner           = &AppError{Code: CodeNotOwner, Message: "Can only edit your own post"}
	ErrAdminOnly          = &AppError{Code: CodeAdminOnly, Message: "Admin only"}
	ErrTargetNotFound     = &AppError{Code: CodeNotFound, Message: "Target not found"}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
