// Package azuresearch implements ports.SearchIndex against the Azure AI Search REST API.
package azuresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/heiraid/heiraid-api/internal/adapters/vendor"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.SearchIndex = (*Client)(nil)

// Options configures a Client.
type Options struct {
	Endpoint   string // https://<service>.search.windows.net
	APIKey     string
	Index      string
	APIVersion string
	HTTPClient *http.Client
}

// Client talks to one Azure AI Search index.
type Client struct {
	endpoint   string
	apiKey     string
	index      string
	apiVersion string
	http       *http.Client
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("azure search endpoint is required")
	}
	if opts.APIKey == "" {
		return nil, errors.New("azure search api key is required")
	}
	if opts.Index == "" {
		return nil, errors.New("azure search index is required")
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2023-11-01"
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(opts.Endpoint, "/"),
		apiKey:     opts.APIKey,
		index:      opts.Index,
		apiVersion: opts.APIVersion,
		http:       hc,
	}, nil
}

type searchRequest struct {
	Search       string `json:"search"`
	Top          int    `json:"top,omitempty"`
	SearchFields string `json:"searchFields,omitempty"`
}

type searchResponse struct {
	Value []document.Document `json:"value"`
}

// Search runs a simple full-text query.
func (c *Client) Search(ctx context.Context, q document.Query) ([]document.Document, error) {
	body := searchRequest{
		Search:       q.Text,
		Top:          q.Top,
		SearchFields: strings.Join(q.SearchFields, ","),
	}
	var out searchResponse
	if err := c.post(ctx, "search", "docs/search", body, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return []document.Document{}, nil
	}
	return out.Value, nil
}

type indexResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

// Upload merges or inserts docs by key. A partial failure reports the first rejected key.
func (c *Client) Upload(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	actions := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		d.Score = 0
		m, err := toMap(d)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
		m["@search.action"] = "mergeOrUpload"
		actions = append(actions, m)
	}

	var out struct {
		Value []indexResult `json:"value"`
	}
	if err := c.post(ctx, "index documents", "docs/index", map[string]any{"value": actions}, &out); err != nil {
		return err
	}
	for _, r := range out.Value {
		if !r.Status {
			return apperrors.Upstream(r.Key+": "+r.ErrorMessage, r.StatusCode,
				fmt.Errorf("index documents: key %s rejected", r.Key))
		}
	}
	return nil
}

// Ping checks that the index exists and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("docs/$count"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return vendor.Wrap("ping search index", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return vendor.FromResponse("ping search index", resp)
	}
	return nil
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/indexes/%s/%s?api-version=%s",
		c.endpoint, url.PathEscape(c.index), path, url.QueryEscape(c.apiVersion))
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return vendor.Wrap(op, err)
	}
	defer resp.Body.Close()

	// 207 is a partial index success; per-document status is in the body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return vendor.FromResponse(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return vendor.Wrap(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func toMap(d document.Document) (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	return m, json.Unmarshal(raw, &m)
}
