package notes

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

const (
	defaultHTTPTimeout   = 10 * time.Minute
	defaultRetryAttempts = 3
	defaultRetryBackoff  = time.Second
)

// OllamaClient talks to a local Ollama server's generate and tags endpoints.
// Transport faults and 5xx responses are retried with a fixed backoff.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client

	retryAttempts int
	retryBackoff  time.Duration
	sleeper       func(time.Duration)
}

// OllamaOption customizes the client.
type OllamaOption func(*OllamaClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) OllamaOption {
	return func(c *OllamaClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry overrides the retry budget and backoff.
func WithRetry(attempts int, backoff time.Duration) OllamaOption {
	return func(c *OllamaClient) {
		c.retryAttempts = attempts
		c.retryBackoff = backoff
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) OllamaOption {
	return func(c *OllamaClient) {
		c.sleeper = sleeper
	}
}

// NewOllamaClient constructs a client for the given base URL.
func NewOllamaClient(baseURL string, opts ...OllamaOption) *OllamaClient {
	client := &OllamaClient{
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		sleeper:       time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate issues a non-streaming completion request and returns the model's
// response text.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("ollama generate: model required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("ollama generate: prompt required")
	}

	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("ollama generate: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		data, err := c.post(ctx, c.baseURL+"/api/generate", body)
		if err == nil {
			var resp generateResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return "", fmt.Errorf("ollama generate: decode response: %w", err)
			}
			return resp.Response, nil
		}

		lastErr = err
		if attempt < c.retryAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
				c.sleeper(c.retryBackoff)
			}
		}
	}
	return "", fmt.Errorf("ollama generate: %w", lastErr)
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the names of locally available models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("ollama tags: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama tags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags: unexpected status code: %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("ollama tags: decode response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *OllamaClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
