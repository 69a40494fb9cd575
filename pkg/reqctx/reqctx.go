// Package reqctx propagates the per-request id and authenticated user id
// from the HTTP edge down into logging and metrics, grounded on the
// teacher's c.Locals("user") pattern in internal/middleware/auth.go and
// fiber's requestid middleware.
package reqctx

import "context"

type key int

const (
	requestIDKey key = iota
	userIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
