package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

// Provider maps each RAG session onto its own qdrant collection. This is
// the external-backend alternative to the embedded chromem index; the
// per-session on-disk layout is qdrant's own.
type Provider struct {
	client *qdrant.Client
}

func GetQdrantProvider(ctx context.Context) *Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &Provider{client: qdrantInstance}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func collectionFor(sessionId string) string {
	return "session-" + sessionId
}

// CreateSessionIndex drops the session's collection if it already exists,
// giving re-ingestion its replace-not-merge semantics.
func (p *Provider) CreateSessionIndex(ctx context.Context, sessionId string) (vectorDB.SessionIndex, error) {
	name := collectionFor(sessionId)

	exists, err := p.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		if err := p.client.DeleteCollection(ctx, name); err != nil {
			return nil, fmt.Errorf("dropping stale collection: %w", err)
		}
	}

	err = p.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	logger.Debug("Created session collection", "collection", name)
	return &sessionIndex{client: p.client, collection: name}, nil
}

func (p *Provider) DropSessionIndex(ctx context.Context, sessionId string) error {
	return p.client.DeleteCollection(ctx, collectionFor(sessionId))
}

type sessionIndex struct {
	client     *qdrant.Client
	collection string
}

func (s *sessionIndex) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"doc_name":      chunk.Doc.Name,
				"source_doc_id": chunk.Doc.Id,
				"chunk_order":   chunk.Order,
				"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *sessionIndex) Search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.collection, err)
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.Match{
			Content: hit.Payload["content"].GetStringValue(),
			DocName: hit.Payload["doc_name"].GetStringValue(),
			Score:   hit.Score,
		})
	}
	return matches, nil
}

// Close is a no-op; the shared client outlives individual sessions.
func (s *sessionIndex) Close() error { return nil }

var _ vectorDB.Provider = (*Provider)(nil)
