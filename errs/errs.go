// Package errs holds the failure taxonomy shared by the booking and payment services.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it without string matching.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindUnauthorized
	KindBusinessRule
	KindGateway
	KindGatewayTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindBusinessRule:
		return "business_rule"
	case KindGateway:
		return "gateway_failure"
	case KindGatewayTimeout:
		return "gateway_timeout"
	default:
		return "unexpected"
	}
}

// AppError is an expected, user-facing failure with a stable machine code.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may repeat the operation unchanged.
func (e *AppError) Retryable() bool {
	return e.Kind == KindGatewayTimeout
}

func NotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func Unauthorized(code, message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: message}
}

func BusinessRule(code, message string) *AppError {
	return &AppError{Kind: KindBusinessRule, Code: code, Message: message}
}

func Gateway(code, message string) *AppError {
	return &AppError{Kind: KindGateway, Code: code, Message: message}
}

func GatewayTimeout(err error) *AppError {
	return &AppError{Kind: KindGatewayTimeout, Code: "gateway_timeout", Message: "payment gateway did not respond in time, please retry", Err: err}
}

// Unexpected wraps an infrastructure error. The message is safe to show to clients.
func Unexpected(err error) *AppError {
	return &AppError{Kind: KindUnexpected, Code: "internal_error", Message: "an unexpected error occurred", Err: err}
}

// KindOf returns the Kind of err, treating anything that is not an AppError as unexpected.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As extracts the AppError from err, wrapping unknown errors as unexpected.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}
