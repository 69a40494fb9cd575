package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pescasolic/pkg/search/client"
)

// canned builds a minimal OpenSearch search-response body carrying exactly
// the two named terms aggregations the dashboard queries for.
func canned(aggA, aggB string, bucketsA, bucketsB []Bucket) []byte {
	body := map[string]interface{}{
		"took": 1,
		"hits": map[string]interface{}{"total": map[string]interface{}{"value": 0}},
		"aggregations": map[string]interface{}{
			aggA: map[string]interface{}{"buckets": bucketsA},
			aggB: map[string]interface{}{"buckets": bucketsB},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func newTestDashboard(t *testing.T, handler http.HandlerFunc) *Dashboard {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.NewClient(client.Config{Addresses: []string{srv.URL}}, "dashboard-test")
	require.NoError(t, err)
	return NewDashboard(c)
}

func TestDashboard_SolicitationCounts(t *testing.T) {
	resp := canned("by_status", "by_priority",
		[]Bucket{{Key: "pendente", Count: 3}, {Key: "concluida", Count: 2}},
		[]Bucket{{Key: "alta", Count: 4}, {Key: "baixa", Count: 1}},
	)
	d := newTestDashboard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(resp)
	})

	counts, err := d.SolicitationCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Total)
	assert.ElementsMatch(t, []Bucket{{Key: "pendente", Count: 3}, {Key: "concluida", Count: 2}}, counts.ByStatus)
	assert.ElementsMatch(t, []Bucket{{Key: "alta", Count: 4}, {Key: "baixa", Count: 1}}, counts.ByPriority)
}

func TestDashboard_LegalCaseCounts(t *testing.T) {
	resp := canned("by_status", "by_court",
		[]Bucket{{Key: "ativo", Count: 7}},
		[]Bucket{{Key: "TJSP", Count: 5}, {Key: "TJRJ", Count: 2}},
	)
	d := newTestDashboard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(resp)
	})

	counts, err := d.LegalCaseCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts.Total)
	assert.ElementsMatch(t, []Bucket{{Key: "ativo", Count: 7}}, counts.ByStatus)
	assert.ElementsMatch(t, []Bucket{{Key: "TJSP", Count: 5}, {Key: "TJRJ", Count: 2}}, counts.ByCourt)
}

func TestDashboard_ErrorStatusSurfaced(t *testing.T) {
	d := newTestDashboard(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := d.SolicitationCounts(context.Background())
	assert.Error(t, err)
}
