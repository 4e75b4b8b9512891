package chromemDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

const collectionName = "chunks"
const indexFileName = "vectors.gob"

// Provider keeps one embedded chromem database per RAG session, persisted
// under <rootDir>/<sessionId>/. An empty rootDir keeps indices in memory
// only (used by tests).
type Provider struct {
	rootDir string
	logger  *logger_i.Logger
}

func NewProvider(rootDir string) *Provider {
	return &Provider{
		rootDir: rootDir,
		logger:  logger_i.NewLogger("Chromem"),
	}
}

// CreateSessionIndex discards any previously persisted index for the
// session and returns a fresh, empty one.
func (p *Provider) CreateSessionIndex(ctx context.Context, sessionId string) (vectorDB.SessionIndex, error) {
	persistPath := ""
	if p.rootDir != "" {
		dir := filepath.Join(p.rootDir, sessionId)
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("clearing session directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
		persistPath = filepath.Join(dir, indexFileName)
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, precomputedOnly)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	p.logger.Debug("Created session index", "session", sessionId, "persist", persistPath != "")
	return &sessionIndex{
		db:          db,
		col:         col,
		persistPath: persistPath,
	}, nil
}

func (p *Provider) DropSessionIndex(ctx context.Context, sessionId string) error {
	if p.rootDir == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(p.rootDir, sessionId))
}

// precomputedOnly is wired as the collection's embedding function but must
// never run: every document carries its vector already.
func precomputedOnly(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding function called but vectors are pre-computed")
}

type sessionIndex struct {
	db          *chromem.DB
	col         *chromem.Collection
	persistPath string
}

func (s *sessionIndex) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ChunkId,
			Content:   chunk.Chunk,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"doc_name":      chunk.Doc.Name,
				"source_doc_id": chunk.Doc.Id,
				"chunk_order":   strconv.Itoa(chunk.Order),
				"ingested_at":   strconv.FormatInt(chunk.Doc.LastIngestTimestamp.Unix(), 10),
			},
		}
	}

	if err := s.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return s.persist()
}

func (s *sessionIndex) Search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	// chromem refuses to return more results than stored documents
	if count := s.col.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]vectorDB.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, vectorDB.Match{
			Content: r.Content,
			DocName: r.Metadata["doc_name"],
			Score:   r.Similarity,
		})
	}
	return matches, nil
}

func (s *sessionIndex) Close() error {
	return s.persist()
}

func (s *sessionIndex) persist() error {
	if s.persistPath == "" {
		return nil
	}
	if err := s.db.Export(s.persistPath, false, ""); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	return nil
}

var _ vectorDB.Provider = (*Provider)(nil)
