package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors. Kind is one of the
// sentinels below, Cause the underlying failure; both match errors.Is.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Error codes.
const (
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeExtraction          = "EXTRACTION_ERROR"
	CodeDateNormalization   = "DATE_NORMALIZATION"
	CodeAmountNormalization = "AMOUNT_NORMALIZATION"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidIdentifier   = "INVALID_IDENTIFIER"
	CodeConfig              = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrExtraction          = errors.New("extraction failed")
	ErrDateNormalization   = errors.New("date normalization failed")
	ErrAmountNormalization = errors.New("amount normalization failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrConfig              = errors.New("invalid configuration")
)

// Error constructors
func NewAppError(code, message string, kind error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

func UnsupportedFormatError(path string) error {
	return NewAppError(CodeUnsupportedFormat, fmt.Sprintf("cannot determine format of %q", path), ErrUnsupportedFormat)
}

func ExtractionError(path string, cause error) error {
	e := NewAppError(CodeExtraction, fmt.Sprintf("cannot extract content from %q", path), ErrExtraction)
	e.Cause = cause
	return e
}

func DateNormalizationError(value string, cause error) error {
	e := NewAppError(CodeDateNormalization, fmt.Sprintf("unrecognized date %q", value), ErrDateNormalization)
	e.Cause = cause
	return e
}

func AmountNormalizationError(value string, cause error) error {
	e := NewAppError(CodeAmountNormalization, fmt.Sprintf("unrecognized amount %q", value), ErrAmountNormalization)
	e.Cause = cause
	return e
}

func InvalidInputError(message string, cause error) error {
	e := NewAppError(CodeInvalidInput, message, ErrInvalidInput)
	e.Cause = cause
	return e
}

func InvalidIdentifierError(value string) error {
	return NewAppError(CodeInvalidIdentifier, fmt.Sprintf("malformed identifier %q", value), ErrInvalidIdentifier)
}

// IsNormalizationError reports whether err should trigger the universal fallback.
func IsNormalizationError(err error) bool {
	return errors.Is(err, ErrDateNormalization) || errors.Is(err, ErrAmountNormalization)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
