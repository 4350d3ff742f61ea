// Package opensearch implements ports.SearchIndex on an OpenSearch cluster.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/heiraid/heiraid-api/internal/adapters/vendor"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.SearchIndex = (*Index)(nil)

// Config holds cluster connection settings.
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	MaxRetries int
	Index      string
	Transport  http.RoundTripper // optional
}

// Index is a document index on an OpenSearch cluster.
type Index struct {
	client *opensearchgo.Client
	index  string
}

// New creates the client. It does not contact the cluster; call Ping for that.
func New(cfg Config) (*Index, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("opensearch addresses are required")
	}
	if cfg.Index == "" {
		return nil, errors.New("opensearch index is required")
	}
	client, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Index{client: client, index: cfg.Index}, nil
}

// Ping verifies cluster connectivity.
func (x *Index) Ping(ctx context.Context) error {
	res, err := x.client.Info(x.client.Info.WithContext(ctx))
	if err != nil {
		return vendor.Wrap("opensearch info", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return vendor.FromBody("opensearch info", res.StatusCode, readAll(res))
	}
	return nil
}

type searchHit struct {
	ID     string            `json:"_id"`
	Score  float64           `json:"_score"`
	Source document.Document `json:"_source"`
}

type searchResult struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// Search runs a simple_query_string query, restricted to q.SearchFields when set.
func (x *Index) Search(ctx context.Context, q document.Query) ([]document.Document, error) {
	sqs := map[string]any{
		"query":            q.Text,
		"default_operator": "or",
	}
	if len(q.SearchFields) > 0 {
		sqs["fields"] = q.SearchFields
	}
	body := map[string]any{
		"query": map[string]any{"simple_query_string": sqs},
	}
	if q.Top > 0 {
		body["size"] = q.Top
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(payload),
	}.Do(ctx, x.client)
	if err != nil {
		return nil, vendor.Wrap("opensearch search", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, vendor.FromBody("opensearch search", res.StatusCode, readAll(res))
	}

	var out searchResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, vendor.Wrap("opensearch search", fmt.Errorf("decode response: %w", err))
	}
	docs := make([]document.Document, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		d := h.Source
		if d.ID == "" {
			d.ID = h.ID
		}
		d.Score = h.Score
		docs = append(docs, d)
	}
	return docs, nil
}

type bulkResult struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Upload indexes docs by ID with the bulk API.
func (x *Index) Upload(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		d.Score = 0
		if err := enc.Encode(map[string]any{"index": map[string]string{"_index": x.index, "_id": d.ID}}); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
	}

	res, err := opensearchapi.BulkRequest{
		Index: x.index,
		Body:  &buf,
	}.Do(ctx, x.client)
	if err != nil {
		return vendor.Wrap("opensearch bulk", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return vendor.FromBody("opensearch bulk", res.StatusCode, readAll(res))
	}

	var out bulkResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return vendor.Wrap("opensearch bulk", fmt.Errorf("decode response: %w", err))
	}
	if !out.Errors {
		return nil
	}
	var failed []string
	for _, item := range out.Items {
		for _, r := range item {
			if r.Error != nil {
				failed = append(failed, r.ID+": "+r.Error.Reason)
			}
		}
	}
	return vendor.FromBody("opensearch bulk", http.StatusMultiStatus,
		mustJSON(map[string]string{"message": strings.Join(failed, "; ")}))
}

func readAll(res *opensearchapi.Response) []byte {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	return buf.Bytes()
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
