package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/metrics"
	"github.com/nvaruna/RagChatServer/internal/rag/embedding"
	"github.com/nvaruna/RagChatServer/internal/rag/ingest"
	"github.com/nvaruna/RagChatServer/internal/rag/llm"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

// Service is the RAG session manager's public contract. The HTTP layer only
// talks to this interface, never to the vector or LLM clients directly.
type Service interface {
	// Ingest builds a fresh retrieval index for the session from the given
	// files, replacing any prior session state for the same identifier.
	Ingest(ctx context.Context, sessionId string, paths []string) error

	// Answer runs the history-aware pipeline and returns the answer plus
	// the full updated history, oldest first.
	Answer(ctx context.Context, sessionId string, question string) (string, []ConversationTurn, error)

	// Lookup reports whether a session exists. Pure read, no side effects
	// beyond recency tracking.
	Lookup(sessionId string) bool
}

type service struct {
	registry    *Registry
	vectors     vectorDB.Provider
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

func NewService(registry *Registry, vectors vectorDB.Provider, llmProvider llm.Provider, embedder embedding.Embedder) Service {
	return &service{
		registry:    registry,
		vectors:     vectors,
		llmProvider: llmProvider,
		embedder:    embedder,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ingest(ctx context.Context, sessionId string, paths []string) error {
	unlock := s.registry.LockSession(sessionId)
	defer unlock()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	corpus, err := ingest.BuildCorpus(paths)
	if err != nil {
		return fmt.Errorf("document loading failed: %w", err)
	}
	if len(paths) > 0 && corpus.Len() == 0 {
		return ErrNoContent
	}

	chunks := ingest.SplitCorpus(corpus, config.ChunkSize, config.ChunkOverlap)
	s.logger.Debug("Split corpus", "session", sessionId, "corpusLen", corpus.Len(), "chunks", len(chunks))

	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Chunk
		}
		vectors, err = s.embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("chunk embedding failed: %w", err)
		}
	}

	index, err := s.vectors.CreateSessionIndex(ctx, sessionId)
	if err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	if err := index.UpsertBatch(ctx, chunks, vectors); err != nil {
		// no partial session: throw the fresh index away
		if dropErr := s.vectors.DropSessionIndex(ctx, sessionId); dropErr != nil {
			s.logger.Error("Error dropping failed index", "session", sessionId, "error", dropErr)
		}
		return fmt.Errorf("index build failed: %w", err)
	}

	metrics.AddIngestedChunks(len(chunks))
	pipeline := buildPipeline(index, s.embedder, s.llmProvider, config.RetrievalTopK)
	s.registry.Register(sessionId, newSession(index, pipeline))
	s.logger.Info("Session registered", "session", sessionId, "chunks", len(chunks))
	return nil
}

func (s *service) Answer(ctx context.Context, sessionId string, question string) (string, []ConversationTurn, error) {
	unlock := s.registry.LockSession(sessionId)
	defer unlock()

	sess, found := s.registry.Get(sessionId)
	if !found {
		return "", nil, ErrSessionNotFound
	}

	answer, err := sess.pipeline.Run(ctx, question, sess.historyLines())
	if err != nil {
		// history stays untouched on failure
		return "", nil, err
	}

	sess.history = append(sess.history, ConversationTurn{Question: question, Answer: answer})
	return answer, sess.snapshotHistory(), nil
}

func (s *service) Lookup(sessionId string) bool {
	_, found := s.registry.Get(sessionId)
	return found
}
