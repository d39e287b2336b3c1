// File path: internal/llm/llm.go
package llm

import (
	"context"
	"os"
	"strings"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/llm/providers"
)

// Provider abstracts the language model backing both query paths: chat
// completion for SQL generation and answer synthesis, embeddings for the
// vector index.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// NewFromEnv selects a provider from the environment: the OpenAI client when
// OPENAI_API_KEY is set, otherwise the deterministic local fallback so the
// binary still starts on machines without credentials.
func NewFromEnv() Provider {
	logger := common.Logger()
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		provider := providers.NewOpenAI(providers.OpenAIConfigFromEnv(key))
		logger.Info("llm: using openai provider", "chat_model", provider.ChatModel(), "embed_model", provider.EmbedModel())
		return provider
	}
	logger.Warn("llm: OPENAI_API_KEY not set, falling back to local provider")
	return providers.NewLocal()
}

var (
	_ Provider = (*providers.OpenAI)(nil)
	_ Provider = (*providers.Local)(nil)
)
