package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds embeddings client configuration.
type Config struct {
	Endpoint  string        // base URL of the embedding server (e.g. "http://localhost:8080")
	Model     string        // model name sent in the request (e.g. "all-MiniLM-L6-v2")
	BatchSize int           // maximum texts per HTTP request; default 32
	Timeout   time.Duration // per-request timeout; default 30s
}

// Client calls an OpenAI-compatible /v1/embeddings endpoint. This covers
// vLLM, Ollama, text-embeddings-inference, and OpenAI itself.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	batchSize  int

	mu  sync.Mutex // protects dim on first call
	dim int
}

// NewClient creates a new embeddings client.
func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		endpoint:   strings.TrimRight(config.Endpoint, "/"),
		model:      config.Model,
		batchSize:  config.BatchSize,
	}, nil
}

// embedRequest is the JSON body sent to /v1/embeddings.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the JSON response from /v1/embeddings.
type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting the input
// into requests of at most BatchSize texts each.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := c.callAPI(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		copy(result[start:end], vecs)
	}
	return result, nil
}

func (c *Client) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.endpoint + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var embResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	// Auto-detect dimension on first call.
	if len(embResp.Data[0].Embedding) > 0 {
		c.mu.Lock()
		if c.dim == 0 {
			c.dim = len(embResp.Data[0].Embedding)
			slog.Debug("detected embedding dimension", "dimension", c.dim, "model", c.model)
		}
		c.mu.Unlock()
	}

	// Reassemble in input order; the server may return data sorted by index.
	vecs := make([][]float32, len(texts))
	for _, d := range embResp.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input index %d", i)
		}
	}
	return vecs, nil
}

// Dimension returns the vector dimension once a call has succeeded,
// falling back to the known size for the configured model.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dim != 0 {
		return c.dim
	}
	return Dimensions(c.model)
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }
