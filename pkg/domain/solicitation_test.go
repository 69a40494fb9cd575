package domain

import (
	"testing"
	"time"
)

func TestNewSolicitationInitialState(t *testing.T) {
	now := time.Now().UTC()
	s := NewSolicitation("sol-1", now)

	if s.Status != StatusPendente {
		t.Fatalf("status = %q, want pendente", s.Status)
	}
	if s.Priority != PriorityBaixa {
		t.Fatalf("priority = %q, want baixa", s.Priority)
	}
	if !s.CreatedAt.Equal(now) || !s.UpdatedAt.Equal(now) {
		t.Fatal("timestamps must be stamped with now")
	}
}

func TestNextStatusForEligibility(t *testing.T) {
	cases := []struct {
		name            string
		status          EligibilityStatus
		hasPendingItems bool
		want            SolicitationStatus
	}{
		{name: "apto approves", status: EligibilityApto, hasPendingItems: false, want: StatusAprovada},
		{name: "apto approves even with pending items", status: EligibilityApto, hasPendingItems: true, want: StatusAprovada},
		{name: "nao_apto with pending items is incomplete", status: EligibilityNaoApto, hasPendingItems: true, want: StatusDocumentacaoIncompleta},
		{name: "nao_apto without pending items is rejected", status: EligibilityNaoApto, hasPendingItems: false, want: StatusReprovada},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextStatusForEligibility(tc.status, tc.hasPendingItems); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
