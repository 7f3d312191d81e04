// Package vectorclient implements the Pinecone-shaped REST contract from
// spec §6: create_index, list_indexes, and per-index upsert/query/delete/
// describe_index_stats, each scoped to a namespace. It knows nothing about
// mastercategories or resumes — internal/vectorstore layers that on top.
package vectorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Vector is one embedding ready to upsert, with arbitrary metadata.
type Vector struct {
	ID       string                 `json:"id"`
	Values   []float64              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Match is one scored hit from a query.
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IndexStats mirrors describe_index_stats's response shape.
type IndexStats struct {
	Namespaces       map[string]NamespaceStats `json:"namespaces"`
	TotalVectorCount int                       `json:"total_vector_count"`
}

// NamespaceStats is the per-namespace entry inside IndexStats.
type NamespaceStats struct {
	VectorCount int `json:"vector_count"`
}

// Client speaks the Pinecone-shaped contract over plain net/http against a
// single control-plane host, following the teacher's pattern of one struct
// per external system wrapping a shared HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New constructs a Client bound to a Pinecone-compatible host.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateIndex creates a serverless index if it does not already exist.
// Pinecone returns 409 for an existing index; that is treated as success.
func (c *Client) CreateIndex(ctx context.Context, name string, dimension int, cloud, region string) error {
	body := map[string]interface{}{
		"name":      name,
		"dimension": dimension,
		"metric":    "cosine",
		"spec": map[string]interface{}{
			"serverless": map[string]interface{}{
				"cloud":  cloud,
				"region": region,
			},
		},
	}
	_, status, err := c.do(ctx, http.MethodPost, "/indexes", body)
	if err != nil && status != http.StatusConflict {
		return fmt.Errorf("create_index %s: %w", name, err)
	}
	return nil
}

// ListIndexes returns the names of every index known to the control plane.
func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	raw, _, err := c.do(ctx, http.MethodGet, "/indexes", nil)
	if err != nil {
		return nil, fmt.Errorf("list_indexes: %w", err)
	}
	var parsed struct {
		Indexes []struct {
			Name string `json:"name"`
		} `json:"indexes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding list_indexes response: %w", err)
	}
	names := make([]string, 0, len(parsed.Indexes))
	for _, idx := range parsed.Indexes {
		names = append(names, idx.Name)
	}
	return names, nil
}

// Upsert writes vectors into one namespace of one index.
func (c *Client) Upsert(ctx context.Context, index, namespace string, vectors []Vector) error {
	body := map[string]interface{}{
		"vectors":   vectors,
		"namespace": namespace,
	}
	_, _, err := c.do(ctx, http.MethodPost, "/indexes/"+index+"/vectors/upsert", body)
	if err != nil {
		return fmt.Errorf("upsert into %s/%s: %w", index, namespace, err)
	}
	return nil
}

// Query runs a single-namespace dense similarity search with an optional
// metadata filter, returning up to topK matches.
func (c *Client) Query(ctx context.Context, index, namespace string, vector []float64, topK int, filter map[string]interface{}) ([]Match, error) {
	body := map[string]interface{}{
		"vector":          vector,
		"topK":            topK,
		"namespace":       namespace,
		"includeMetadata": true,
	}
	if filter != nil {
		body["filter"] = filter
	}
	raw, _, err := c.do(ctx, http.MethodPost, "/indexes/"+index+"/query", body)
	if err != nil {
		return nil, fmt.Errorf("query %s/%s: %w", index, namespace, err)
	}
	var parsed struct {
		Matches []Match `json:"matches"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}
	return parsed.Matches, nil
}

// Delete removes vectors by id from one namespace.
func (c *Client) Delete(ctx context.Context, index, namespace string, ids []string) error {
	body := map[string]interface{}{
		"ids":       ids,
		"namespace": namespace,
	}
	_, _, err := c.do(ctx, http.MethodPost, "/indexes/"+index+"/vectors/delete", body)
	if err != nil {
		return fmt.Errorf("delete from %s/%s: %w", index, namespace, err)
	}
	return nil
}

// DescribeIndexStats returns per-namespace vector counts for one index.
func (c *Client) DescribeIndexStats(ctx context.Context, index string) (IndexStats, error) {
	raw, _, err := c.do(ctx, http.MethodPost, "/indexes/"+index+"/describe_index_stats", map[string]interface{}{})
	if err != nil {
		return IndexStats{}, fmt.Errorf("describe_index_stats %s: %w", index, err)
	}
	var stats IndexStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return IndexStats{}, fmt.Errorf("decoding describe_index_stats response: %w", err)
	}
	return stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, resp.StatusCode, fmt.Errorf("%d - %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}
