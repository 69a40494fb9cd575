package reqctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID() = %q, want req-123", got)
	}
}

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-9")
	if got := UserID(ctx); got != "user-9" {
		t.Fatalf("UserID() = %q, want user-9", got)
	}
}

func TestMissingValuesReturnEmptyString(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Fatalf("RequestID() on bare context = %q, want empty", got)
	}
	if got := UserID(ctx); got != "" {
		t.Fatalf("UserID() on bare context = %q, want empty", got)
	}
}

func TestBothValuesCoexist(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID() = %q, want req-1", got)
	}
	if got := UserID(ctx); got != "user-1" {
		t.Fatalf("UserID() = %q, want user-1", got)
	}
}
