package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"audiobook/types"
)

// OpenAIClient is the OpenAI-compatible provider. It sits behind Ollama in
// the default chains and is only built when an API key is configured.
type OpenAIClient struct {
	embedModel string
	chatModel  string
	dimension  int

	embedTimeout time.Duration
	llmTimeout   time.Duration

	client *openai.Client
}

type OpenAIParams struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Dimension  int

	EmbedTimeout time.Duration
	LLMTimeout   time.Duration
}

func NewOpenAIClient(params OpenAIParams) *OpenAIClient {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	return &OpenAIClient{
		embedModel:   params.EmbedModel,
		chatModel:    params.ChatModel,
		dimension:    params.Dimension,
		embedTimeout: params.EmbedTimeout,
		llmTimeout:   params.LLMTimeout,
		client:       &client,
	}
}

func (c *OpenAIClient) Name() string   { return "openai" }
func (c *OpenAIClient) Dimension() int { return c.dimension }

// EmbedBatch embeds all texts in one request. The Dimensions parameter
// pins the output width so it matches whatever the rest of the chain uses.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	rCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	res, err := c.client.Embeddings.New(rCtx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.embedModel),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}
	if len(res.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			types.ErrEmbeddingUnavailable, len(res.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range res.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[item.Index] = vec
	}
	return out, nil
}

// Complete sends a two-message chat completion and returns the text.
// Quota and rate failures map to ErrLLMQuotaExceeded so the answer
// synthesizer can degrade instead of failing the request.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	rCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	response, err := c.client.Chat.Completions.New(rCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", types.ErrLLMQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %v", types.ErrLLMUnavailable, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", types.ErrLLMUnavailable)
	}
	return response.Choices[0].Message.Content, nil
}
