package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeCompanyNotFound  ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeProductNotFound  ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeContractNotFound ErrorCode = "CONTRACT_NOT_FOUND"
	ErrCodeDuplicateRequest ErrorCode = "DUPLICATE_REQUEST"
	ErrCodeInvalidStartDate ErrorCode = "INVALID_START_DATE"
	ErrCodeInvalidEndDate   ErrorCode = "INVALID_END_DATE"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Details carries per-field messages for VALIDATION_ERROR.
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports structural input problems keyed by field name.
func NewValidationError(details map[string]string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: "request validation failed",
		Details: details,
	}
}

// Common domain errors.
var (
	ErrCompanyNotFound  = NewError(ErrCodeCompanyNotFound, "company not found")
	ErrProductNotFound  = NewError(ErrCodeProductNotFound, "product not found")
	ErrContractNotFound = NewError(ErrCodeContractNotFound, "contract not found")
	ErrDuplicateRequest = NewError(ErrCodeDuplicateRequest, "an identical contract request was processed moments ago, retry later")
	ErrCannotCancel     = NewError(ErrCodeInvalidState, "a completed contract cannot be cancelled")
	ErrInvalidPayload   = NewError(ErrCodeValidation, "invalid payload")
)

// ErrContractNumberTaken is returned by repositories when the unique contract number
// constraint rejects an insert.
var ErrContractNumberTaken = errors.New("contract number already taken")

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the domain code carried by err, or ErrCodeInternal for anything else.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != "" {
		return dErr.Code
	}
	return ErrCodeInternal
}
