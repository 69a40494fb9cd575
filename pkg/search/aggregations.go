package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"pescasolic/pkg/search/client"
)

// Dashboard runs the bucket aggregations backing /solicitacao/dashboard and
// /processos/dashboard, adapted from the teacher's
// pkg/search/aggregations.go executeAggregationQuery/extractBuckets pair.
type Dashboard struct {
	client *client.Client
}

func NewDashboard(c *client.Client) *Dashboard {
	return &Dashboard{client: c}
}

// Bucket is one terms-aggregation bucket: a key plus its document count.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"doc_count"`
}

// SolicitationCounts aggregates every projected Solicitation by status and
// by priority.
type SolicitationCounts struct {
	Total      int64    `json:"total"`
	ByStatus   []Bucket `json:"by_status"`
	ByPriority []Bucket `json:"by_priority"`
}

func (d *Dashboard) SolicitationCounts(ctx context.Context) (*SolicitationCounts, error) {
	query := map[string]interface{}{
		"size":  0,
		"query": termQuery("kind", string(kindSolicitation)),
		"aggs": map[string]interface{}{
			"by_status":   termsAgg("status", 20),
			"by_priority": termsAgg("priority", 20),
		},
	}

	res, err := d.executeAggregationQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	byStatus, total, err := d.extractBucketsWithTotal(res, "by_status")
	if err != nil {
		return nil, err
	}
	byPriority, _, err := d.extractBucketsWithTotal(res, "by_priority")
	if err != nil {
		return nil, err
	}

	return &SolicitationCounts{Total: total, ByStatus: byStatus, ByPriority: byPriority}, nil
}

// LegalCaseCounts aggregates every projected LegalCase by status and by
// court.
type LegalCaseCounts struct {
	Total    int64    `json:"total"`
	ByStatus []Bucket `json:"by_status"`
	ByCourt  []Bucket `json:"by_court"`
}

func (d *Dashboard) LegalCaseCounts(ctx context.Context) (*LegalCaseCounts, error) {
	query := map[string]interface{}{
		"size":  0,
		"query": termQuery("kind", string(kindLegalCase)),
		"aggs": map[string]interface{}{
			"by_status": termsAgg("status", 20),
			"by_court":  termsAgg("court", 50),
		},
	}

	res, err := d.executeAggregationQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	byStatus, total, err := d.extractBucketsWithTotal(res, "by_status")
	if err != nil {
		return nil, err
	}
	byCourt, _, err := d.extractBucketsWithTotal(res, "by_court")
	if err != nil {
		return nil, err
	}

	return &LegalCaseCounts{Total: total, ByStatus: byStatus, ByCourt: byCourt}, nil
}

func termQuery(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

func termsAgg(field string, size int) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{
			"field": field,
			"size":  size,
		},
	}
}

func (d *Dashboard) executeAggregationQuery(ctx context.Context, query map[string]interface{}) (*opensearchapi.Response, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal aggregation query: %w", err)
	}

	searchReq := opensearchapi.SearchRequest{
		Index: []string{d.client.GetIndex()},
		Body:  bytes.NewReader(body),
	}

	res, err := searchReq.Do(ctx, d.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("aggregation request failed: %w", err)
	}
	if res.IsError() {
		res.Body.Close()
		return nil, fmt.Errorf("aggregation failed with status: %s", res.Status())
	}
	return res, nil
}

// extractBucketsWithTotal parses one named terms aggregation out of the
// response, returning its buckets plus the sum of their doc counts (used as
// the dashboard's "total" since every document carries exactly one kind).
func (d *Dashboard) extractBucketsWithTotal(res *opensearchapi.Response, aggName string) ([]Bucket, int64, error) {
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read aggregation response: %w", err)
	}

	var parsed struct {
		Aggregations map[string]struct {
			Buckets []Bucket `json:"buckets"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, 0, fmt.Errorf("parse aggregation response: %w", err)
	}

	agg, ok := parsed.Aggregations[aggName]
	if !ok {
		return nil, 0, fmt.Errorf("aggregation %s not found", aggName)
	}

	var total int64
	for _, b := range agg.Buckets {
		total += b.Count
	}
	return agg.Buckets, total, nil
}
