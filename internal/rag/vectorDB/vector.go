package vectorDB

import (
	"context"

	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
)

type Match struct {
	Content string
	DocName string
	Score   float32
}

// SessionIndex is the nearest-neighbour index owned by exactly one RAG
// session. A session's chunks are never visible through another session's
// index.
type SessionIndex interface {
	UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Close() error
}

// Provider creates and destroys per-session indices. CreateSessionIndex
// always returns a fresh, empty index, discarding anything previously
// stored for the same session identifier.
type Provider interface {
	CreateSessionIndex(ctx context.Context, sessionId string) (SessionIndex, error)
	DropSessionIndex(ctx context.Context, sessionId string) error
}
