package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/nvaruna/RagChatServer/internal/adapter/utils"
	"github.com/nvaruna/RagChatServer/internal/domain/commonModels"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// sourceSpan marks which uploaded file a region of the corpus came from.
// Offsets are rune positions into Corpus.Text.
type sourceSpan struct {
	Start int
	End   int
	Doc   commonModels.Document
}

// Corpus is the concatenation of every text block extracted from every
// uploaded file, in upload order.
type Corpus struct {
	Text  []rune
	spans []sourceSpan
}

func (c Corpus) Len() int { return len(c.Text) }

var logger *logger_i.Logger

func init() {
	logger = logger_i.NewLogger("Document Ingestion")
}

// BuildCorpus loads every file and concatenates the extracted blocks into
// one corpus, preserving source order. A file that cannot be loaded fails
// the whole ingestion.
func BuildCorpus(paths []string) (Corpus, error) {
	var corpus Corpus

	for _, path := range paths {
		docType := getDocType(path)
		if docType == commonModels.ERR {
			return Corpus{}, fmt.Errorf("unsupported document type: %s", path)
		}

		pages, err := extractText(path, docType)
		if err != nil {
			return Corpus{}, fmt.Errorf("loading %s: %w", path, err)
		}
		logger.Debug("Extracted document", "path", path, "pages", len(pages))

		var blocks []string
		for _, p := range pages {
			if strings.TrimSpace(p.Content) != "" {
				blocks = append(blocks, p.Content)
			}
		}
		if len(blocks) == 0 {
			continue
		}

		doc := commonModels.Document{
			Id:                  utils.GetNewUUID(),
			Name:                path,
			LastIngestTimestamp: time.Now(),
			ContentType:         docType,
		}

		text := []rune(strings.Join(blocks, "\n\n"))
		if len(corpus.Text) > 0 {
			corpus.Text = append(corpus.Text, []rune("\n\n")...)
		}
		start := len(corpus.Text)
		corpus.Text = append(corpus.Text, text...)
		corpus.spans = append(corpus.spans, sourceSpan{Start: start, End: len(corpus.Text), Doc: doc})
	}

	return corpus, nil
}

// SplitCorpus cuts the corpus into chunks of at most limit runes, with
// consecutive chunks sharing an overlap-rune window. Every rune position is
// covered by at least one chunk; a corpus no longer than limit yields
// exactly one chunk. Each chunk is attributed to the source file covering
// its starting position.
func SplitCorpus(corpus Corpus, limit int, overlap int) []commonModels.DocChunk {
	if corpus.Len() == 0 {
		return nil
	}

	step := limit - overlap
	var chunks []commonModels.DocChunk

	for start, order := 0, 0; ; start, order = start+step, order+1 {
		end := start + limit
		if end > corpus.Len() {
			end = corpus.Len()
		}

		chunks = append(chunks, commonModels.DocChunk{
			Doc:     corpus.sourceAt(start),
			ChunkId: utils.GetNewUUID(),
			Chunk:   string(corpus.Text[start:end]),
			Order:   order,
		})

		if end == corpus.Len() {
			break
		}
	}

	return chunks
}

func (c Corpus) sourceAt(pos int) commonModels.Document {
	for _, s := range c.spans {
		if pos >= s.Start && pos < s.End {
			return s.Doc
		}
	}
	//position falls in a joiner between files, attribute to the next span
	for _, s := range c.spans {
		if pos < s.End {
			return s.Doc
		}
	}
	if len(c.spans) > 0 {
		return c.spans[len(c.spans)-1].Doc
	}
	return commonModels.Document{}
}
