package models

import (
	"errors"
	"fmt"
)

// Error types

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// DuplicateCodeError is returned when an insert loses the uniqueness
// race on short_code.
type DuplicateCodeError struct {
	ShortCode string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("short code already exists: %s", e.ShortCode)
}

// IssuerError carries a failure reported by the external code issuer.
// Code is the provider's numeric error code when it sent one.
type IssuerError struct {
	Code    int
	Message string
}

func (e *IssuerError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("issuer error %d: %s", e.Code, e.Message)
	}
	return "issuer error: " + e.Message
}

// CodeExhaustedError is returned when local code generation runs out
// of collision retries.
type CodeExhaustedError struct {
	Attempts int
}

func (e *CodeExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate unique short code after %d attempts", e.Attempts)
}

// Helpers for callers that only care about the category.
// These see through fmt.Errorf("%w") wrapping.

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsDuplicateCode(err error) bool {
	var e *DuplicateCodeError
	return errors.As(err, &e)
}

func IsIssuerError(err error) bool {
	var e *IssuerError
	return errors.As(err, &e)
}
