package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvaruna/RagChatServer/internal/rag"
)

func writeTempFiles(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(contents))
	for i, content := range contents {
		path := filepath.Join(dir, "doc"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return paths
}

func newTestService(embedder *MockEmbedder, llmMock *MockLLM, provider *memProvider) rag.Service {
	return rag.NewService(rag.NewRegistry(8), provider, llmMock, embedder)
}

func TestIngestAndAnswer_FullFlow(t *testing.T) {
	ctx := context.Background()
	provider := newMemProvider()
	llmMock := &MockLLM{
		OnGenerate: func(ctx context.Context, question string, matches []string, history []string) (string, error) {
			if len(matches) == 0 {
				return "", errors.New("expected retrieved context")
			}
			return "Paris", nil
		},
	}
	service := newTestService(&MockEmbedder{}, llmMock, provider)

	paths := writeTempFiles(t,
		"The capital of France is Paris.",
		"The Eiffel Tower is a landmark in Paris.")
	if err := service.Ingest(ctx, "sess-1", paths); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !service.Lookup("sess-1") {
		t.Fatal("Session not registered after ingest")
	}

	answer, history, err := service.Answer(ctx, "sess-1", "What is the capital of France?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "Paris" {
		t.Errorf("answer = %q; want Paris", answer)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d; want 1", len(history))
	}
	if history[0].Question != "What is the capital of France?" || history[0].Answer != "Paris" {
		t.Errorf("unexpected history turn: %+v", history[0])
	}
}

func TestAnswer_UnknownSession(t *testing.T) {
	service := newTestService(&MockEmbedder{}, &MockLLM{}, newMemProvider())

	_, _, err := service.Answer(context.Background(), "nope", "hello?")
	if !errors.Is(err, rag.ErrSessionNotFound) {
		t.Fatalf("err = %v; want ErrSessionNotFound", err)
	}
}

func TestIngest_NoExtractableContent(t *testing.T) {
	service := newTestService(&MockEmbedder{}, &MockLLM{}, newMemProvider())

	paths := writeTempFiles(t, "   \n\t\n  ")
	err := service.Ingest(context.Background(), "sess-empty", paths)
	if !errors.Is(err, rag.ErrNoContent) {
		t.Fatalf("err = %v; want ErrNoContent", err)
	}
	if service.Lookup("sess-empty") {
		t.Error("Session must not be registered when nothing was extracted")
	}
}

func TestIngest_EmbeddingFailureLeavesNoSession(t *testing.T) {
	embedder := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	service := newTestService(embedder, &MockLLM{}, newMemProvider())

	paths := writeTempFiles(t, "some real content")
	if err := service.Ingest(context.Background(), "sess-fail", paths); err == nil {
		t.Fatal("Expected embedding failure to surface")
	}
	if service.Lookup("sess-fail") {
		t.Error("Session must not be registered after a failed ingest")
	}
}

func TestIngest_IndexBuildFailureDropsIndex(t *testing.T) {
	provider := newMemProvider()
	provider.FailUpserts = true
	service := newTestService(&MockEmbedder{}, &MockLLM{}, provider)

	paths := writeTempFiles(t, "some real content")
	if err := service.Ingest(context.Background(), "sess-upsert", paths); err == nil {
		t.Fatal("Expected upsert failure to surface")
	}
	if len(provider.Dropped) != 1 || provider.Dropped[0] != "sess-upsert" {
		t.Errorf("Dropped = %v; want [sess-upsert]", provider.Dropped)
	}
	if service.Lookup("sess-upsert") {
		t.Error("Session must not be registered after a failed index build")
	}
}

func TestReingest_ResetsHistory(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&MockEmbedder{}, &MockLLM{}, newMemProvider())

	paths := writeTempFiles(t, "original document content")
	if err := service.Ingest(ctx, "sess-2", paths); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, _, err := service.Answer(ctx, "sess-2", "first question"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	// uploading again replaces the documents and starts a fresh conversation
	if err := service.Ingest(ctx, "sess-2", paths); err != nil {
		t.Fatalf("Re-ingest failed: %v", err)
	}
	_, history, err := service.Answer(ctx, "sess-2", "second question")
	if err != nil {
		t.Fatalf("Answer after re-ingest failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length after re-ingest = %d; want 1", len(history))
	}
	if history[0].Question != "second question" {
		t.Errorf("history kept stale turns: %+v", history)
	}
}

func TestAnswer_HistoryUntouchedOnFailure(t *testing.T) {
	ctx := context.Background()
	failNext := false
	llmMock := &MockLLM{
		OnGenerate: func(ctx context.Context, question string, matches []string, history []string) (string, error) {
			if failNext {
				return "", errors.New("provider down")
			}
			return "ok", nil
		},
	}
	service := newTestService(&MockEmbedder{}, llmMock, newMemProvider())

	paths := writeTempFiles(t, "document content")
	if err := service.Ingest(ctx, "sess-3", paths); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, _, err := service.Answer(ctx, "sess-3", "good question"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	failNext = true
	if _, _, err := service.Answer(ctx, "sess-3", "doomed question"); err == nil {
		t.Fatal("Expected generation failure to surface")
	}

	failNext = false
	_, history, err := service.Answer(ctx, "sess-3", "another question")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d; want 2 (failed turn must not be recorded)", len(history))
	}
	for _, turn := range history {
		if turn.Question == "doomed question" {
			t.Error("Failed turn was recorded in history")
		}
	}
}

func TestAnswer_ReformulationSkippedOnFirstTurn(t *testing.T) {
	ctx := context.Background()
	llmMock := &MockLLM{
		OnReformulate: func(ctx context.Context, question string, history []string) (string, error) {
			if len(history) == 0 {
				return "", errors.New("reformulation must not run without history")
			}
			return "standalone: " + question, nil
		},
	}
	var embeddedQueries []string
	embedder := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, query string) ([]float32, error) {
			embeddedQueries = append(embeddedQueries, query)
			return []float32{1, 0, 0}, nil
		},
	}
	service := newTestService(embedder, llmMock, newMemProvider())

	paths := writeTempFiles(t, "document content")
	if err := service.Ingest(ctx, "sess-4", paths); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if _, _, err := service.Answer(ctx, "sess-4", "first"); err != nil {
		t.Fatalf("First answer failed: %v", err)
	}
	if llmMock.ReformulateCalls != 0 {
		t.Errorf("Reformulate ran %d times on the first turn; want 0", llmMock.ReformulateCalls)
	}

	if _, _, err := service.Answer(ctx, "sess-4", "and what about it?"); err != nil {
		t.Fatalf("Second answer failed: %v", err)
	}
	if llmMock.ReformulateCalls != 1 {
		t.Errorf("Reformulate ran %d times on the second turn; want 1", llmMock.ReformulateCalls)
	}
	// retrieval embeds the reformulated question, not the raw one
	last := embeddedQueries[len(embeddedQueries)-1]
	if !strings.HasPrefix(last, "standalone: ") {
		t.Errorf("Retrieval used %q; want the reformulated question", last)
	}
}

func TestSessions_AreIsolated(t *testing.T) {
	ctx := context.Background()
	provider := newMemProvider()
	var lastMatches []string
	llmMock := &MockLLM{
		OnGenerate: func(ctx context.Context, question string, matches []string, history []string) (string, error) {
			lastMatches = matches
			return "answer", nil
		},
	}
	service := newTestService(&MockEmbedder{}, llmMock, provider)

	alpha := writeTempFiles(t, "alpha document about cats")
	beta := writeTempFiles(t, "beta document about dogs")
	if err := service.Ingest(ctx, "sess-a", alpha); err != nil {
		t.Fatalf("Ingest sess-a failed: %v", err)
	}
	if err := service.Ingest(ctx, "sess-b", beta); err != nil {
		t.Fatalf("Ingest sess-b failed: %v", err)
	}

	if _, _, err := service.Answer(ctx, "sess-a", "what is this about?"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	for _, m := range lastMatches {
		if strings.Contains(m, "dogs") {
			t.Error("Session sess-a retrieved another session's chunks")
		}
	}

	_, historyA, err := service.Answer(ctx, "sess-a", "again?")
	if err != nil {
		t.Fatal(err)
	}
	_, historyB, err := service.Answer(ctx, "sess-b", "first for b")
	if err != nil {
		t.Fatal(err)
	}
	if len(historyA) != 2 || len(historyB) != 1 {
		t.Errorf("history lengths = %d, %d; want 2, 1", len(historyA), len(historyB))
	}
}

