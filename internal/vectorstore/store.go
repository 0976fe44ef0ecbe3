// Package vectorstore implements the Vector Store (§4.5): an
// in-memory two-table schema (files/chunks) plus an approximate
// nearest-neighbor index over chunk embeddings. Grounded in
// original_source/src/embeddings/project_repository.rs's
// `ProjectRepository` (schema, upsert-with-cascade, search query), with
// the ANN search itself using a cosine-distance index over
// viterin/vek and the metadata held in a SQLite in-memory connection.
package vectorstore

import "github.com/diffsec/codesearchd/internal/fileset"

// ChunkRow is one row of the logical `chunks` table (§4.5):
// `chunks(chunk_id PK, file_id FK, start_row, start_col, end_row,
// end_col, start_byte, end_byte, embedding f32[D])`.
type ChunkRow struct {
	ChunkID   int64
	FileID    int64
	StartRow  uint32
	StartCol  uint32
	EndRow    uint32
	EndCol    uint32
	StartByte uint
	EndByte   uint
	Embedding []float32
}

// SearchHit pairs a resolved OutputChunk with its distance from the
// query embedding.
type SearchHit struct {
	Chunk    fileset.OutputChunk
	Distance float32
}

// Store is the Vector Store's operation set (§4.5
// "Operations").
type Store interface {
	// UpsertFile atomically looks up or inserts the file record; if
	// pre-existing, deletes all its chunk rows and refreshes
	// updated_at; then inserts the new chunk rows in order.
	// len(chunks) == len(embeddings) is a precondition.
	UpsertFile(path string, chunks []ChunkSpan, embeddings [][]float32) error
	// Search returns the k lowest-distance chunk rows, ascending by
	// distance, with no secondary tie-break promised.
	Search(queryEmbedding []float32, k int) ([]SearchHit, error)
	// DeleteFile removes a file's record and all of its chunk rows
	// (supplemental: spec's open question on FileDeleted).
	DeleteFile(path string) error
	// Files returns every known file path.
	Files() ([]string, error)
	// Close releases the underlying connection.
	Close() error
}

// ChunkSpan is the subset of chunker.Span the store needs to persist
// a row; kept separate from chunker.Span so this package does not
// need to import the chunker for its public API.
type ChunkSpan struct {
	StartByte uint
	EndByte   uint
	StartRow  uint32
	StartCol  uint32
	EndRow    uint32
	EndCol    uint32
}
