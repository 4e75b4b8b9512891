package commonModels

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// DocChunk is a contiguous span of corpus text. Order is the chunk's
// position within the session corpus; immutable once built.
type DocChunk struct {
	Doc     Document
	ChunkId string `json:"chunk_id"`
	Chunk   string `json:"content"`
	Order   int    `json:"chunk_order"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"
