package logger

import (
	"context"
)

// ContextKey is used for context values
type ContextKey string

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey ContextKey = "request_id"
	// DatasetKey is the context key for the dataset a request targets
	DatasetKey ContextKey = "dataset"
	// ClientKey is the context key for the remote client address
	ClientKey ContextKey = "client"
)

// WithContextValue adds a value to the context for logging
func WithContextValue(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// WithRequestID returns a context carrying the request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// ExtractContextValues extracts logging-relevant values from context
func ExtractContextValues(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var args []any

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, string(RequestIDKey), requestID)
	}

	if dataset, ok := ctx.Value(DatasetKey).(string); ok {
		args = append(args, string(DatasetKey), dataset)
	}

	if client, ok := ctx.Value(ClientKey).(string); ok {
		args = append(args, string(ClientKey), client)
	}

	return args
}
