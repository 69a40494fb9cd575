package domainerr

import (
	"errors"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(InvalidInput, "bad input")
	if err.Error() != "invalid_input: bad input" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWrapIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Storage, "upload failed", cause)
	if err.Error() != "storage: upload failed: boom" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause via Unwrap")
	}
}

func TestIs(t *testing.T) {
	err := New(DocumentNotFound, "nope")
	if !Is(err, DocumentNotFound) {
		t.Fatal("Is() should match the error's own kind")
	}
	if Is(err, Storage) {
		t.Fatal("Is() should not match an unrelated kind")
	}
	if Is(errors.New("plain"), DocumentNotFound) {
		t.Fatal("Is() should not match a non-domainerr error")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(New(Classification, "x")); got != Classification {
		t.Fatalf("KindOf() = %q, want classification", got)
	}
	if got := KindOf(errors.New("plain")); got != Domain {
		t.Fatalf("KindOf(untyped) = %q, want domain catch-all", got)
	}
	if got := KindOf(nil); got != "" {
		t.Fatalf("KindOf(nil) = %q, want empty", got)
	}
}

func TestStatusClassMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidInput:           422,
		UnsupportedDocument:    422,
		IncompleteData:         422,
		DocumentNotFound:       404,
		SolicitationNotFound:   404,
		LegalCaseNotFound:      404,
		Upload:                 502,
		Storage:                502,
		Classification:         502,
		Extraction:             502,
		EligibilityComputation: 502,
		LegalCasePersistence:   502,
		ExternalRateLimit:      503,
		Domain:                 500,
	}
	for kind, want := range cases {
		if got := StatusClass(kind); got != want {
			t.Errorf("StatusClass(%q) = %d, want %d", kind, got, want)
		}
	}
}
