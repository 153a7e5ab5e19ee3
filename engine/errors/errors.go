// Package errors provides custom error types and error handling utilities for the engine.
package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guileen/gridsource/logger"
)

// Error codes for different types of errors
const (
	ErrCodeUnknown          = "unknown_error"
	ErrCodeMalformedRequest = "malformed_request"
	ErrCodeStorage          = "storage_error"
	ErrCodeConfig           = "config_error"
	ErrCodeNotFound         = "not_found"
)

// EngineError represents a custom error type for the engine
type EngineError struct {
	Code    string
	Message string
	Op      string
	Err     error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements the unwrap interface for error chaining
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return false
}

// Log logs the error with the process logger; args are appended as extra
// fields
func (e *EngineError) Log(ctx context.Context, logLevel slog.Level, args ...any) {
	logFields := []any{
		"error_code", e.Code,
		"operation", e.Op,
		"message", e.Message,
	}
	logFields = append(logFields, args...)

	if e.Err != nil {
		logFields = append(logFields, "cause", e.Err.Error())
	}

	switch logLevel {
	case slog.LevelDebug:
		logger.DebugContext(ctx, "Engine error occurred", logFields...)
	case slog.LevelInfo:
		logger.InfoContext(ctx, "Engine error occurred", logFields...)
	case slog.LevelWarn:
		logger.WarnContext(ctx, "Engine error occurred", logFields...)
	default:
		logger.ErrorContext(ctx, "Engine error occurred", logFields...)
	}
}

// Wrap wraps an existing error with context
func Wrap(err error, code, op string) *EngineError {
	return &EngineError{
		Code:    code,
		Message: err.Error(),
		Op:      op,
		Err:     err,
	}
}

// Wrapf wraps an existing error with formatted context
func Wrapf(err error, code, op, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
		Err:     err,
	}
}

func NewMalformedRequest(op, msg string) *EngineError {
	return &EngineError{
		Code:    ErrCodeMalformedRequest,
		Message: msg,
		Op:      op,
	}
}

func NewMalformedRequestf(op, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    ErrCodeMalformedRequest,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}

func NewStorageErrorf(op, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    ErrCodeStorage,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}

func NewConfigErrorf(op, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    ErrCodeConfig,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}

func NewNotFoundf(op, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}

// IsMalformedRequest checks if an error rejects a request as malformed
func IsMalformedRequest(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Code == ErrCodeMalformedRequest
}

// IsStorageError checks if an error is a storage error
func IsStorageError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Code == ErrCodeStorage
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Code == ErrCodeConfig
}

// IsNotFound checks if an error indicates something was not found
func IsNotFound(err error) bool {
	var e *EngineError
	return errors.As(err, &e) && e.Code == ErrCodeNotFound
}

// Code returns the EngineError code carried by err, or ErrCodeUnknown
func Code(err error) string {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// Predefined error variables
var (
	ErrMalformedRequest = &EngineError{Code: ErrCodeMalformedRequest, Message: "malformed request"}
	ErrDatasetNotFound  = &EngineError{Code: ErrCodeNotFound, Message: "dataset not found"}
)

// LogError logs an error at error level
func LogError(ctx context.Context, err error, args ...any) {
	var e *EngineError
	if errors.As(err, &e) {
		e.Log(ctx, slog.LevelError, args...)
	} else {
		logger.ErrorContext(ctx, "Unexpected error occurred", append([]any{"error", err.Error()}, args...)...)
	}
}

// LogWarning logs an error at warning level
func LogWarning(ctx context.Context, err error, args ...any) {
	var e *EngineError
	if errors.As(err, &e) {
		e.Log(ctx, slog.LevelWarn, args...)
	} else {
		logger.WarnContext(ctx, "Unexpected error occurred", append([]any{"error", err.Error()}, args...)...)
	}
}
