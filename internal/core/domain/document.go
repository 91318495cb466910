package domain

import "time"

// Document represents one knowledge-base document after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// LoadedAt is when the document was read from its source.
	LoadedAt time.Time
}

// RawDocument is the unprocessed form produced by a connector before
// normalisation.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// Content is the raw file bytes.
	Content []byte

	// MIMEType identifies the format for normaliser selection.
	MIMEType string
}

// Chunk is the unit of retrieval: a bounded span of document text.
// Chunks are created once at index-build time and never mutated.
type Chunk struct {
	// ID is the chunk identifier, deterministic for a given document
	// and chunking configuration (documentID:position).
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the originating document identifier shown to users
	// (file name or URI).
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Offset is the rune offset of Content within the document text.
	Offset int

	// Embedding is the vector representation for similarity search.
	// Populated at index-build time.
	Embedding []float32
}
