// File path: internal/engine/engine.go
package engine

import (
	"context"
	"fmt"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/exact"
	"github.com/rofenac/fo76-ml-db/internal/gamedata"
	"github.com/rofenac/fo76-ml-db/internal/intent"
	"github.com/rofenac/fo76-ml-db/internal/llm"
	"github.com/rofenac/fo76-ml-db/internal/retriever"
	"github.com/rofenac/fo76-ml-db/internal/retry"
)

// Method identifies which retrieval strategy produced an answer.
type Method string

const (
	MethodExact  Method = "EXACT"
	MethodVector Method = "VECTOR+SQL"
	MethodHybrid Method = "HYBRID"
)

// Engine routes a question to the exact path or the conceptual path and
// returns one (answer, method) pair per question. Nothing persists across
// questions except the caller-owned session.
type Engine struct {
	classifier *intent.Classifier
	exact      *exact.Adapter
	retriever  *retriever.Retriever
	provider   llm.Provider

	// vectorK is the top-k for plain conceptual retrieval and the ranked
	// block size for category search.
	vectorK  int
	retryCfg retry.Config
}

func New(classifier *intent.Classifier, exactAdapter *exact.Adapter, ret *retriever.Retriever, provider llm.Provider) *Engine {
	return &Engine{
		classifier: classifier,
		exact:      exactAdapter,
		retriever:  ret,
		provider:   provider,
		vectorK:    15,
		retryCfg:   retry.DefaultConfig,
	}
}

// Ask answers one question within a session. The session is read when
// building prompts and appended to exactly once on success.
func (e *Engine) Ask(ctx context.Context, session *Session, question string) (string, Method, error) {
	logger := common.Logger()
	result := e.classifier.Classify(question)
	history := session.History()

	if result.Kind == intent.KindExact {
		logger.Info("engine: routing question", "method", MethodExact)
		answer, err := e.exact.Answer(ctx, question, history)
		if err != nil {
			return "", MethodExact, err
		}
		session.Append(question, MethodExact, answer)
		return answer, MethodExact, nil
	}

	names := intent.ExtractEntities(question)

	method := MethodVector
	var hits []gamedata.Hit
	categoryComplete := false
	if result.Category != nil {
		method = MethodHybrid
		logger.Info("engine: routing question", "method", method, "category", result.Category.Label())
		res, err := e.retriever.CategorySearch(ctx, question, *result.Category, e.vectorK)
		if err != nil {
			return "", method, fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
		hits = res.Hits
		categoryComplete = res.CategoryComplete
	} else {
		logger.Info("engine: routing question", "method", method)
		var err error
		hits, err = e.retriever.VectorSearch(ctx, question, e.vectorK)
		if err != nil {
			return "", method, fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
	}

	enriched, err := e.retriever.Enrich(ctx, hits, names)
	if err != nil {
		return "", method, fmt.Errorf("%w: %w", ErrEnrichment, err)
	}

	answer, err := e.formatAnswer(ctx, question, enriched, categoryComplete, history)
	if err != nil {
		return "", method, err
	}
	session.Append(question, method, answer)
	return answer, method, nil
}
