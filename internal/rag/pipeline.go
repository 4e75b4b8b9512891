package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/nvaruna/RagChatServer/internal/metrics"
	"github.com/nvaruna/RagChatServer/internal/rag/embedding"
	"github.com/nvaruna/RagChatServer/internal/rag/llm"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
)

// Pipeline is the history-aware query chain for one session: reformulate,
// retrieve, generate. Built once when the session is registered, not per
// call.
type Pipeline struct {
	index       vectorDB.SessionIndex
	embedder    embedding.Embedder
	llmProvider llm.Provider
	topK        int
}

func buildPipeline(index vectorDB.SessionIndex, embedder embedding.Embedder, llmProvider llm.Provider, topK int) *Pipeline {
	return &Pipeline{
		index:       index,
		embedder:    embedder,
		llmProvider: llmProvider,
		topK:        topK,
	}
}

// Run answers one question. The history is read-only here; appending the
// new turn is the caller's job so that a failed call leaves it untouched.
func (p *Pipeline) Run(ctx context.Context, question string, history []string) (string, error) {
	standalone := question
	if len(history) > 0 {
		reformulated, err := p.timedReformulate(ctx, question, history)
		if err != nil {
			return "", fmt.Errorf("question reformulation failed: %w", err)
		}
		standalone = reformulated
	}

	queryVector, err := p.timedEmbed(ctx, standalone)
	if err != nil {
		return "", fmt.Errorf("query embedding failed: %w", err)
	}

	matches, err := p.timedSearch(ctx, queryVector)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}

	matchTexts := make([]string, 0, len(matches))
	for _, m := range matches {
		matchTexts = append(matchTexts, fmt.Sprintf("Content: %s, DocumentName: %s", m.Content, m.DocName))
	}

	// the generation step gets the ORIGINAL question; the reformulated one
	// only drives retrieval
	answer, err := p.timedGenerate(ctx, question, matchTexts, history)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, nil
}

func (p *Pipeline) timedReformulate(ctx context.Context, question string, history []string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("reformulation", time.Since(start)) }()
	return p.llmProvider.Reformulate(ctx, question, history)
}

func (p *Pipeline) timedEmbed(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()
	return p.embedder.GetEmbedding(ctx, query)
}

func (p *Pipeline) timedSearch(ctx context.Context, vector []float32) ([]vectorDB.Match, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return p.index.Search(ctx, vector, p.topK)
}

func (p *Pipeline) timedGenerate(ctx context.Context, question string, matches []string, history []string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()
	return p.llmProvider.GenerateAnswer(ctx, question, matches, history)
}
