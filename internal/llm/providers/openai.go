// File path: internal/llm/providers/openai.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rofenac/fo76-ml-db/internal/retry"
)

const (
	defaultChatModel  = openai.GPT4oMini
	defaultEmbedModel = string(openai.SmallEmbedding3)
)

// OpenAIConfig carries the connection settings for the hosted provider.
// BaseURL is optional and points the client at any OpenAI-compatible server.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

// OpenAIConfigFromEnv builds a config from the environment, filling defaults
// for anything unset.
func OpenAIConfigFromEnv(apiKey string) OpenAIConfig {
	cfg := OpenAIConfig{
		APIKey:     apiKey,
		BaseURL:    strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		ChatModel:  strings.TrimSpace(os.Getenv("F76_LLM_CHAT_MODEL")),
		EmbedModel: strings.TrimSpace(os.Getenv("F76_LLM_EMBED_MODEL")),
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	return cfg
}

// OpenAI implements the provider surface against the OpenAI API.
type OpenAI struct {
	client     *openai.Client
	chatModel  string
	embedModel string
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}
	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

func (p *OpenAI) Name() string       { return "openai" }
func (p *OpenAI) ChatModel() string  { return p.chatModel }
func (p *OpenAI) EmbedModel() string { return p.embedModel }

func (p *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", retry.Permanent(errors.New("empty prompt"))
	}
	req := openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		// A syntactically valid but empty response will not improve on retry.
		return "", retry.Permanent(errors.New("openai completion: no choices returned"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(p.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, retry.Permanent(fmt.Errorf("openai embeddings: expected %d vectors, got %d", len(inputs), len(resp.Data)))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
