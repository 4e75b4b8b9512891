package chromemDB

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
)

func chunk(id string, content string, docName string, order int) commonModels.DocChunk {
	return commonModels.DocChunk{
		Doc: commonModels.Document{
			Id:                  "doc-" + id,
			Name:                docName,
			LastIngestTimestamp: time.Now(),
			ContentType:         commonModels.DOCX,
		},
		ChunkId: id,
		Chunk:   content,
		Order:   order,
	}
}

func TestSessionIndex_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider("") // memory only

	index, err := provider.CreateSessionIndex(ctx, "sess-1")
	if err != nil {
		t.Fatalf("CreateSessionIndex failed: %v", err)
	}

	chunks := []commonModels.DocChunk{
		chunk("c1", "cats are mammals", "animals.txt", 0),
		chunk("c2", "planes can fly", "machines.txt", 1),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}
	if err := index.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	matches, err := index.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches; want 1", len(matches))
	}
	if matches[0].Content != "cats are mammals" {
		t.Errorf("nearest match = %q; want the cat chunk", matches[0].Content)
	}
	if matches[0].DocName != "animals.txt" {
		t.Errorf("DocName = %q; want animals.txt", matches[0].DocName)
	}
}

func TestSessionIndex_SearchClampsTopK(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider("")

	index, err := provider.CreateSessionIndex(ctx, "sess-clamp")
	if err != nil {
		t.Fatal(err)
	}
	if err := index.UpsertBatch(ctx,
		[]commonModels.DocChunk{chunk("c1", "only one document", "single.txt", 0)},
		[][]float32{{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	// asking for more results than stored must not error
	matches, err := index.Search(ctx, []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches; want 1", len(matches))
	}
}

func TestSessionIndex_SearchEmptyIndex(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider("")

	index, err := provider.CreateSessionIndex(ctx, "sess-empty")
	if err != nil {
		t.Fatal(err)
	}

	matches, err := index.Search(ctx, []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("Search on empty index failed: %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestUpsertBatch_VectorCountMismatch(t *testing.T) {
	ctx := context.Background()
	provider := NewProvider("")

	index, err := provider.CreateSessionIndex(ctx, "sess-mismatch")
	if err != nil {
		t.Fatal(err)
	}

	err = index.UpsertBatch(ctx,
		[]commonModels.DocChunk{chunk("c1", "content", "a.txt", 0)},
		[][]float32{{1, 0}, {0, 1}})
	if err == nil {
		t.Fatal("expected a chunk/vector count mismatch error")
	}
}

func TestCreateSessionIndex_ReplacesPersistedState(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := NewProvider(root)

	index, err := provider.CreateSessionIndex(ctx, "sess-disk")
	if err != nil {
		t.Fatal(err)
	}
	if err := index.UpsertBatch(ctx,
		[]commonModels.DocChunk{chunk("c1", "persisted content", "a.txt", 0)},
		[][]float32{{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	indexFile := filepath.Join(root, "sess-disk", indexFileName)
	if _, err := os.Stat(indexFile); err != nil {
		t.Fatalf("index file not persisted: %v", err)
	}

	// re-creating the index wipes the old directory
	if _, err := provider.CreateSessionIndex(ctx, "sess-disk"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(indexFile); !os.IsNotExist(err) {
		t.Error("old index file survived re-creation")
	}
}

func TestDropSessionIndex(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	provider := NewProvider(root)

	if _, err := provider.CreateSessionIndex(ctx, "sess-drop"); err != nil {
		t.Fatal(err)
	}
	if err := provider.DropSessionIndex(ctx, "sess-drop"); err != nil {
		t.Fatalf("DropSessionIndex failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "sess-drop")); !os.IsNotExist(err) {
		t.Error("session directory survived drop")
	}
}
