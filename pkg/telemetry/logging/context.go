package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// TransactionIDKey is the context key for transaction IDs.
	TransactionIDKey contextKey = "transaction_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithTransactionID adds a transaction ID to the context.
func WithTransactionID(ctx context.Context, txID string) context.Context {
	return context.WithValue(ctx, TransactionIDKey, txID)
}

// GetTransactionID retrieves the transaction ID from the context.
func GetTransactionID(ctx context.Context) string {
	if txID, ok := ctx.Value(TransactionIDKey).(string); ok {
		return txID
	}
	return ""
}
