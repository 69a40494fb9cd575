package objectstore

import (
	"context"
	"testing"

	"pescasolic/pkg/domainerr"
)

func TestUploadRejectsBlobOverMaxSize(t *testing.T) {
	store := &Store{maxUploadBytes: 10}
	data := make([]byte, 11)

	_, err := store.Upload(context.Background(), "some/key", data, "application/pdf")
	if err == nil {
		t.Fatal("expected error for oversized blob")
	}
	if domainerr.KindOf(err) != domainerr.InvalidInput {
		t.Fatalf("kind = %q, want invalid_input", domainerr.KindOf(err))
	}
}
