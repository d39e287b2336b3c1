// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const localEmbeddingDim = 256

// Local is a deterministic offline provider. Completions return a fixed
// notice and embeddings are token-hash projections, which keeps retrieval
// plumbing and tests runnable without credentials. Answer quality is not a
// goal here.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (p *Local) Name() string { return "local" }

func (p *Local) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "No language model is configured. Set OPENAI_API_KEY to enable generated answers.", nil
}

func (p *Local) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(inputs))
	for i, input := range inputs {
		vectors[i] = hashEmbedding(input)
	}
	return vectors, nil
}

func hashEmbedding(text string) []float32 {
	vec := make([]float32, localEmbeddingDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()
		vec[sum%localEmbeddingDim] += 1
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
