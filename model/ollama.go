package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"audiobook/types"
)

// OllamaClient talks to a local Ollama server for both embeddings and
// completions. Requests are plain JSON over HTTP.
type OllamaClient struct {
	baseURL    string
	embedModel string
	llmModel   string
	dimension  int
	batchSize  int

	embedTimeout time.Duration
	llmTimeout   time.Duration

	httpClient *http.Client
}

type OllamaParams struct {
	BaseURL    string
	EmbedModel string
	LLMModel   string
	Dimension  int
	BatchSize  int

	EmbedTimeout time.Duration
	LLMTimeout   time.Duration
}

func NewOllamaClient(params OllamaParams) *OllamaClient {
	if params.BatchSize <= 0 {
		params.BatchSize = 32
	}
	return &OllamaClient{
		baseURL:      params.BaseURL,
		embedModel:   params.EmbedModel,
		llmModel:     params.LLMModel,
		dimension:    params.Dimension,
		batchSize:    params.BatchSize,
		embedTimeout: params.EmbedTimeout,
		llmTimeout:   params.LLMTimeout,
		httpClient:   http.DefaultClient,
	}
}

func (c *OllamaClient) Name() string   { return "ollama" }
func (c *OllamaClient) Dimension() int { return c.dimension }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// EmbedBatch embeds the texts in order. The input is cut into batches of
// the configured size and the batches run concurrently; the output keeps
// the input order regardless.
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	eg, ectx := errgroup.WithContext(ctx)
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := start, texts[start:end]
		eg.Go(func() error {
			vectors, err := c.embedOnce(ectx, batch)
			if err != nil {
				return err
			}
			copy(out[offset:], vectors)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OllamaClient) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: c.embedModel, Input: batch})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	rCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	respBody, err := c.post(rCtx, "/api/embed", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, fmt.Errorf("%w: bad embed response: %v", types.ErrEmbeddingUnavailable, err)
	}
	if len(ollamaResp.Embeddings) != len(batch) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			types.ErrEmbeddingUnavailable, len(ollamaResp.Embeddings), len(batch))
	}

	vectors := make([][]float32, len(ollamaResp.Embeddings))
	for i, raw := range ollamaResp.Embeddings {
		if len(raw) != c.dimension {
			return nil, fmt.Errorf("%w: embedding dimension %d, expected %d",
				types.ErrEmbeddingUnavailable, len(raw), c.dimension)
		}
		norm := normalize64(raw)
		vec := make([]float32, len(norm))
		for j, v := range norm {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Complete sends a single-turn generate request and returns the text.
func (c *OllamaClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.llmModel,
		System: system,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	rCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	respBody, err := c.post(rCtx, "/api/generate", body)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.status == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", types.ErrLLMQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %v", types.ErrLLMUnavailable, err)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: bad generate response: %v", types.ErrLLMUnavailable, err)
	}
	return genResp.Response, nil
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("ollama API error: status %d, body: %s", e.status, e.body)
}

func (c *OllamaClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode, body: string(respBody)}
	}
	return respBody, nil
}

// normalize64 scales a vector to unit length so dot products equal cosine
// similarity.
func normalize64(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i, x := range vec {
		vec[i] = x / norm
	}
	return vec
}
