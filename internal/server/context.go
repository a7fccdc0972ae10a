package server

import (
	"context"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// setRequestIDContext adds the request ID to context
func setRequestIDContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// getRequestIDFromContext retrieves the request ID from context
func getRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
