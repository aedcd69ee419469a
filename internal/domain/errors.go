package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Generation pipeline errors
	CodeRejectedInput     ErrorCode = "REJECTED_INPUT"
	CodeGenerationFailure ErrorCode = "GENERATION_FAILED"
	CodeStoreFailure      ErrorCode = "STORE_FAILURE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for the error taxonomy

// NewRejectedInputError marks a prompt the upstream provider refused to
// process, carrying the provider's stated reason.
func NewRejectedInputError(reason string) *DomainError {
	return NewError(CodeRejectedInput, fmt.Sprintf("Prompt was blocked: %s", reason), nil)
}

// NewGenerationFailureError wraps an upstream call failure (network,
// timeout, quota).
func NewGenerationFailureError(cause error) *DomainError {
	return NewError(CodeGenerationFailure, "Failed to generate questions", cause)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

// NewQuizNotFoundError reports that no questions are stored for the meeting.
func NewQuizNotFoundError(meetingID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("No quiz found for meeting: %s", meetingID), nil)
}

// NewStoreFailureError wraps a persistence I/O failure.
func NewStoreFailureError(message string, cause error) *DomainError {
	return NewError(CodeStoreFailure, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}
