package rag

import "errors"

// ErrSessionNotFound means a query hit a session identifier with no prior
// ingestion. Mapped to a client-facing 404, never an empty answer.
var ErrSessionNotFound = errors.New("session not found, upload documents first")

// ErrNoContent means ingestion could not extract any usable text from the
// given files. No session is registered in that case.
var ErrNoContent = errors.New("no content could be extracted from the uploaded documents")
