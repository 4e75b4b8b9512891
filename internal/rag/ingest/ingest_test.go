package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.DOCX},
		{"report.rtf", commonModels.DOCX},
		{"slides.odt", commonModels.DOCX},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func corpusFromText(text string) Corpus {
	runes := []rune(text)
	return Corpus{
		Text:  runes,
		spans: []sourceSpan{{Start: 0, End: len(runes), Doc: commonModels.Document{Name: "test.txt"}}},
	}
}

func TestSplitCorpus_SingleChunkWhenUnderLimit(t *testing.T) {
	corpus := corpusFromText(strings.Repeat("a", 100))

	chunks := SplitCorpus(corpus, 100, 20)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for corpus at the limit, got %d", len(chunks))
	}
	if len([]rune(chunks[0].Chunk)) != 100 {
		t.Errorf("Chunk length = %d; want 100", len([]rune(chunks[0].Chunk)))
	}
}

func TestSplitCorpus_OverlapAndCoverage(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	corpus := corpusFromText(text)
	limit, overlap := 30, 5

	chunks := SplitCorpus(corpus, limit, overlap)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	// consecutive chunks share the overlap window
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Chunk)
		tail := string(prev[len(prev)-overlap:])
		if !strings.HasPrefix(chunks[i].Chunk, tail) {
			t.Errorf("Chunk %d does not start with the previous chunk's overlap", i)
		}
	}

	// stitching the chunks back together reproduces the corpus
	var rebuilt []rune
	for i, c := range chunks {
		runes := []rune(c.Chunk)
		if i == 0 {
			rebuilt = append(rebuilt, runes...)
			continue
		}
		rebuilt = append(rebuilt, runes[overlap:]...)
		if c.Order != i {
			t.Errorf("Chunk %d has order %d", i, c.Order)
		}
	}
	if string(rebuilt) != text {
		t.Errorf("Rebuilt corpus does not match the original")
	}
}

func TestSplitCorpus_LastChunkCoversTail(t *testing.T) {
	corpus := corpusFromText(strings.Repeat("x", 101))

	chunks := SplitCorpus(corpus, 100, 50)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1].Chunk
	if !strings.HasSuffix(string(corpus.Text), last) {
		t.Error("Last chunk does not cover the corpus tail")
	}
}

func TestSplitCorpus_Empty(t *testing.T) {
	if chunks := SplitCorpus(Corpus{}, 100, 10); chunks != nil {
		t.Errorf("Expected no chunks for an empty corpus, got %d", len(chunks))
	}
}

func TestBuildCorpus_TxtFiles(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	if err := os.WriteFile(first, []byte("The capital of France is Paris."), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("The Eiffel Tower is in Paris."), 0600); err != nil {
		t.Fatal(err)
	}

	corpus, err := BuildCorpus([]string{first, second})
	if err != nil {
		t.Fatalf("BuildCorpus failed: %v", err)
	}

	text := string(corpus.Text)
	if !strings.Contains(text, "capital of France") || !strings.Contains(text, "Eiffel Tower") {
		t.Errorf("Corpus is missing file content: %q", text)
	}

	chunks := SplitCorpus(corpus, 5000, 500)
	if len(chunks) != 1 {
		t.Fatalf("Expected a single chunk, got %d", len(chunks))
	}
	if chunks[0].Doc.Name != first {
		t.Errorf("Chunk attributed to %s; want %s", chunks[0].Doc.Name, first)
	}
	if chunks[0].ChunkId == "" {
		t.Error("Chunk is missing an id")
	}
}

func TestBuildCorpus_UnsupportedType(t *testing.T) {
	if _, err := BuildCorpus([]string{"diagram.png"}); err == nil {
		t.Fatal("Expected an error for an unsupported document type")
	}
}

func TestBuildCorpus_MissingFileFailsWhole(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("some content"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := BuildCorpus([]string{good, filepath.Join(dir, "missing.txt")}); err == nil {
		t.Fatal("Expected an error when one file cannot be loaded")
	}
}

func TestBuildCorpus_WhitespaceOnlyFileYieldsEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte("   \n\t  \n"), 0600); err != nil {
		t.Fatal(err)
	}

	corpus, err := BuildCorpus([]string{blank})
	if err != nil {
		t.Fatalf("BuildCorpus failed: %v", err)
	}
	if corpus.Len() != 0 {
		t.Errorf("Expected empty corpus, got %d runes", corpus.Len())
	}
}
