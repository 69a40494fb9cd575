package domain

import "testing"

func TestCoerceClassificationKnownValue(t *testing.T) {
	if got := CoerceClassification("CNIS"); got != ClassCNIS {
		t.Fatalf("got %q, want %q", got, ClassCNIS)
	}
}

func TestCoerceClassificationUnknownFallsBackToOutro(t *testing.T) {
	cases := []string{"", "NOT_A_REAL_CATEGORY", "cnis"}
	for _, raw := range cases {
		if got := CoerceClassification(raw); got != ClassOutro {
			t.Fatalf("CoerceClassification(%q) = %q, want OUTRO", raw, got)
		}
	}
}

func TestAllowedUploadMimetypes(t *testing.T) {
	for _, mt := range []string{"application/pdf", "image/jpeg", "image/png", "image/tiff"} {
		if !AllowedUploadMimetypes[mt] {
			t.Fatalf("expected %q to be allowed", mt)
		}
	}
	if AllowedUploadMimetypes["application/msword"] {
		t.Fatal("application/msword must not be an allowed upload mimetype")
	}
}
