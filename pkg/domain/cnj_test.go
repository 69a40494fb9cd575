package domain

import "testing"

func TestNormalizeCNJ(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "already canonical", raw: "1234567-89.2024.8.26.0100", want: "12345678920248260100"},
		{name: "bare digits", raw: "12345678920248260100", want: "12345678920248260100"},
		{name: "too short", raw: "123", wantErr: true},
		{name: "non-digit noise only", raw: "abc-def", wantErr: true},
		{name: "too long", raw: "123456789202482601001", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCNJ(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanonicalCNJ(t *testing.T) {
	got, err := CanonicalCNJ("12345678920248260100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1234567-89.2024.8.26.0100"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCanonicalCNJRejectsWrongLength(t *testing.T) {
	if _, err := CanonicalCNJ("123"); err == nil {
		t.Fatal("expected error for short digit string")
	}
}
