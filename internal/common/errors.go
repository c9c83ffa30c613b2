package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrConfig       = errors.New("configuration error")
	ErrExtraction   = errors.New("text extraction failed")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ConfigError marks a fatal startup condition: missing or malformed
// configuration, prompt file, or an unusable scan directory. Nothing is
// processed once one of these is raised.
func ConfigError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrConfig
	} else {
		cause = fmt.Errorf("%w: %w", ErrConfig, cause)
	}
	return &AppError{Code: "CONFIG_ERROR", Message: message, Cause: cause}
}

// ExtractionError marks a per-document text extraction failure. The batch
// converts it into an error row and continues with the next file.
func ExtractionError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrExtraction
	} else {
		cause = fmt.Errorf("%w: %w", ErrExtraction, cause)
	}
	return &AppError{Code: "EXTRACTION_ERROR", Message: message, Cause: cause}
}
