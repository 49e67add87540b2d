package models

import (
	"errors"
	"fmt"
)

const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUsageLimitExceeded = "USAGE_LIMIT_EXCEEDED"
	CodeUsageUnavailable   = "USAGE_CHECK_UNAVAILABLE"
	CodeMalformedStrategy  = "MALFORMED_STRATEGY"
	CodeUpstreamAI         = "UPSTREAM_AI"
	CodeConflict           = "CONFLICT"
	CodeBriefFailed        = "BRIEF_FAILED"
	CodeInternal           = "INTERNAL"
)

// AppError is an error with a stable code that the HTTP layer maps to a status.
type AppError struct {
	Code    string
	Message string
	Err     error
	Details map[string]any
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

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewUsageLimitError(limits *UsageLimits) *AppError {
	details := map[string]any{}
	if limits != nil {
		details["posts_remaining"] = limits.PostsRemaining
	}
	return &AppError{
		Code:    CodeUsageLimitExceeded,
		Message: "Usage limit reached. Please upgrade your plan to generate more posts.",
		Details: details,
	}
}

func NewMalformedStrategyError(err error) *AppError {
	return &AppError{
		Code:    CodeMalformedStrategy,
		Message: "malformed strategy response",
		Err:     err,
	}
}

func NewUpstreamAIError(message string, err error) *AppError {
	return &AppError{Code: CodeUpstreamAI, Message: message, Err: err}
}

// NewBriefFailedError reports a brief whose generation ended in error.
func NewBriefFailedError(briefID string, postsGenerated int) *AppError {
	return &AppError{
		Code:    CodeBriefFailed,
		Message: "brief generation failed",
		Details: map[string]any{
			"brief_id":        briefID,
			"posts_generated": postsGenerated,
			"status":          BriefStatusError,
		},
	}
}

// ErrorCode returns the AppError code carried by err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
