// Package llmclient implements the Ollama-shaped LLM endpoint contract from
// spec §6: a generate endpoint with a chat fallback on 404, and a health
// check against /api/tags. Every field extractor, the classifier, and the
// designation matcher share this one client, each issuing stateless calls
// that carry no conversational history (session isolation).
package llmclient

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

// Options configures one generation call's decoding parameters.
type Options struct {
	Temperature float64
	TopP        float64
	NumCtx      int
}

// DefaultOptions returns the low-temperature, small-top-p decoding
// parameters the field extractors require for deterministic output.
func DefaultOptions() Options {
	return Options{Temperature: 0.2, TopP: 0.3, NumCtx: 2048}
}

// Client speaks the generate/chat/tags contract against a single Ollama-
// compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New constructs a Client. baseURL defaults to the local Ollama endpoint
// and model to a small general-purpose model when empty, matching the
// teacher's ollamaService defaulting.
func New(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2:3b"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// HealthCheck reports whether the endpoint is reachable and lists at least
// one model, per spec's GET /api/tags -> {models:[{name}]} contract.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("llm endpoint not accessible: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("decoding /api/tags response: %w", err)
	}
	return len(tags.Models) > 0, nil
}

// Generate issues one isolated completion call: a fresh request with no
// shared history, via the generate endpoint, falling back transparently to
// the chat endpoint on a 404 (older/chat-only backends).
func (c *Client) Generate(ctx context.Context, systemNote, prompt string, opts Options) (string, error) {
	fullPrompt := prompt
	if systemNote != "" {
		fullPrompt = systemNote + "\n\n" + prompt
	}

	text, status, err := c.generateEndpoint(ctx, fullPrompt, opts)
	if err == nil {
		return text, nil
	}
	if status != http.StatusNotFound {
		return "", err
	}
	return c.chatEndpoint(ctx, systemNote, prompt, opts)
}

func (c *Client) generateEndpoint(ctx context.Context, prompt string, opts Options) (string, int, error) {
	body := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"top_p":       opts.TopP,
			"num_ctx":     opts.NumCtx,
		},
	}

	respBody, status, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return "", status, err
	}
	text, ok := extractResponseText(respBody)
	if !ok {
		return "", status, fmt.Errorf("no recognizable response field in generate reply")
	}
	return text, status, nil
}

func (c *Client) chatEndpoint(ctx context.Context, systemNote, prompt string, opts Options) (string, error) {
	messages := []map[string]string{}
	if systemNote != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemNote})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"top_p":       opts.TopP,
			"num_ctx":     opts.NumCtx,
		},
	}

	respBody, _, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}
	text, ok := extractResponseText(respBody)
	if !ok {
		return "", fmt.Errorf("no recognizable response field in chat reply")
	}
	return text, nil
}

// Embed generates a dense embedding for text against /api/embeddings, the
// Ollama-shaped embedding contract alongside generate/chat/tags.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body := map[string]interface{}{
		"model":  c.model,
		"prompt": text,
	}
	decoded, _, err := c.post(ctx, "/api/embeddings", body)
	if err != nil {
		return nil, err
	}
	raw, ok := decoded["embedding"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("no embedding field in embeddings reply")
	}
	vec := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("non-numeric embedding element at index %d", i)
		}
		vec[i] = f
	}
	return vec, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) (map[string]interface{}, int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("llm request to %s failed: %d - %s", path, resp.StatusCode, string(raw))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return decoded, resp.StatusCode, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// extractResponseText pulls generated text out of whichever key the
// backend used, in the priority order the spec documents:
// response / text / content / message.content.
func extractResponseText(decoded map[string]interface{}) (string, bool) {
	for _, key := range []string{"response", "text", "content"} {
		if v, ok := decoded[key].(string); ok && v != "" {
			return v, true
		}
	}
	if msg, ok := decoded["message"].(map[string]interface{}); ok {
		if v, ok := msg["content"].(string); ok {
			return v, true
		}
	}
	return "", false
}
