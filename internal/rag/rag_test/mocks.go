package rag_test

import (
	"context"
	"errors"
	"sync"

	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
)

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type MockLLM struct {
	OnReformulate func(ctx context.Context, question string, history []string) (string, error)
	OnGenerate    func(ctx context.Context, question string, matches []string, history []string) (string, error)
	OnComplete    func(ctx context.Context, systemPrompt string, input string) (string, error)

	ReformulateCalls int
}

func (m *MockLLM) Reformulate(ctx context.Context, question string, history []string) (string, error) {
	m.ReformulateCalls++
	if m.OnReformulate != nil {
		return m.OnReformulate(ctx, question, history)
	}
	return question, nil
}

func (m *MockLLM) GenerateAnswer(ctx context.Context, question string, matches []string, history []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, matches, history)
	}
	return "mock answer", nil
}

func (m *MockLLM) Complete(ctx context.Context, systemPrompt string, input string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, systemPrompt, input)
	}
	return "mock completion", nil
}

// memProvider keeps one in-memory index per session, enough to observe
// which chunks each session holds.
type memProvider struct {
	mu      sync.Mutex
	indexes map[string]*memIndex

	OnCreate    func(ctx context.Context, sessionId string) error
	FailUpserts bool
	Dropped     []string
}

func newMemProvider() *memProvider {
	return &memProvider{indexes: make(map[string]*memIndex)}
}

func (p *memProvider) CreateSessionIndex(ctx context.Context, sessionId string) (vectorDB.SessionIndex, error) {
	if p.OnCreate != nil {
		if err := p.OnCreate(ctx, sessionId); err != nil {
			return nil, err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := &memIndex{failUpserts: p.FailUpserts}
	p.indexes[sessionId] = idx
	return idx, nil
}

func (p *memProvider) DropSessionIndex(ctx context.Context, sessionId string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.indexes, sessionId)
	p.Dropped = append(p.Dropped, sessionId)
	return nil
}

type memIndex struct {
	mu          sync.Mutex
	chunks      []commonModels.DocChunk
	closed      bool
	failUpserts bool
}

func (i *memIndex) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if i.failUpserts {
		return errors.New("upsert rejected")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.chunks = append(i.chunks, chunks...)
	return nil
}

func (i *memIndex) Search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	matches := make([]vectorDB.Match, 0, topK)
	for _, c := range i.chunks {
		if len(matches) >= topK {
			break
		}
		matches = append(matches, vectorDB.Match{Content: c.Chunk, DocName: c.Doc.Name, Score: 1})
	}
	return matches, nil
}

func (i *memIndex) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	return nil
}
