package vectorstore

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/diffsec/codesearchd/internal/fileset"
)

// memoryStore implements Store with an in-memory modernc.org/sqlite
// connection holding the `files`/`chunks` tables (§4.5), and a
// brute-force cosine-distance index over the chunk embeddings kept in
// process memory, updated in lock-step with the SQLite rows. This
// mirrors the original Rust's `rusqlite::Connection::open_in_memory()`
// + sqlite-vec virtual table, without requiring a vector-search SQLite
// extension Go cannot load: the ANN layer is a separate
// viterin/vek-based brute-force index, kept alongside rather than
// inside SQLite.
type memoryStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	ann *cosineIndex
}

// New opens a fresh in-memory vector store. Every server start
// rebuilds the index from scratch (§6 "Persisted state: none").
func New() (Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer per §4.5 "Concurrency"

	schema := []string{
		`CREATE TABLE files (
			file_id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE chunks (
			chunk_id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id INTEGER NOT NULL REFERENCES files(file_id),
			start_row INTEGER NOT NULL,
			start_col INTEGER NOT NULL,
			end_row INTEGER NOT NULL,
			end_col INTEGER NOT NULL,
			start_byte INTEGER NOT NULL,
			end_byte INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_chunks_file_id ON chunks(file_id)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &memoryStore{db: db, ann: newCosineIndex()}, nil
}

// UpsertFile implements §4.5's atomic upsert: look up or insert
// the file record; if pre-existing, delete its chunk rows and refresh
// updated_at; insert new rows in order. Grounded in
// project_repository.rs's `insert_file`.
func (s *memoryStore) UpsertFile(path string, chunks []ChunkSpan, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("vectorstore: chunks/embeddings count mismatch (%d vs %d)", len(chunks), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var fileID int64
	row := tx.QueryRow(`SELECT file_id FROM files WHERE path = ?`, path)
	switch err := row.Scan(&fileID); err {
	case nil:
		if err := s.deleteChunksForFileTx(tx, fileID); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE files SET updated_at = CURRENT_TIMESTAMP WHERE file_id = ?`, fileID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		res, err := tx.Exec(`INSERT INTO files (path) VALUES (?)`, path)
		if err != nil {
			return err
		}
		fileID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	default:
		return err
	}

	inserted := make([]int64, 0, len(chunks))
	for i, c := range chunks {
		res, err := tx.Exec(
			`INSERT INTO chunks (file_id, start_row, start_col, end_row, end_col, start_byte, end_byte)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fileID, c.StartRow, c.StartCol, c.EndRow, c.EndCol, c.StartByte, c.EndByte,
		)
		if err != nil {
			return err
		}
		chunkID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		inserted = append(inserted, chunkID)
		_ = i
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	// Only mutate the in-memory ANN index once the transaction has
	// durably (for the process's lifetime) committed, so a failed
	// upsert never leaves the index and the SQLite rows diverged.
	s.ann.deleteFile(fileID)
	for i, chunkID := range inserted {
		s.ann.insert(chunkID, fileID, embeddings[i])
	}
	return nil
}

func (s *memoryStore) deleteChunksForFileTx(tx *sql.Tx, fileID int64) error {
	_, err := tx.Exec(`DELETE FROM chunks WHERE file_id = ?`, fileID)
	return err
}

// Search returns the k lowest-distance rows, hydrated into
// OutputChunks via path resolution (§4.5 "search").
func (s *memoryStore) Search(queryEmbedding []float32, k int) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := s.ann.search(queryEmbedding, k)
	hits := make([]SearchHit, 0, len(candidates))
	for _, cand := range candidates {
		row := s.db.QueryRow(
			`SELECT c.file_id, c.start_row, c.start_col, c.end_row, c.end_col, c.start_byte, c.end_byte, f.path
			 FROM chunks c JOIN files f ON f.file_id = c.file_id
			 WHERE c.chunk_id = ?`, cand.chunkID)

		var fileID int64
		var startRow, startCol, endRow, endCol uint32
		var startByte, endByte uint
		var path string
		if err := row.Scan(&fileID, &startRow, &startCol, &endRow, &endCol, &startByte, &endByte, &path); err != nil {
			continue // no chunk row for this index entry; skip
		}

		hits = append(hits, SearchHit{
			Chunk: fileset.OutputChunk{
				Path:      path,
				StartByte: startByte,
				EndByte:   endByte,
				StartRow:  startRow,
				StartCol:  startCol,
				EndRow:    endRow,
				EndCol:    endCol,
			},
			Distance: cand.distance,
		})
	}
	return hits, nil
}

// DeleteFile removes a file's record and all of its chunk rows.
func (s *memoryStore) DeleteFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var fileID int64
	row := tx.QueryRow(`SELECT file_id FROM files WHERE path = ?`, path)
	if err := row.Scan(&fileID); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	if err := s.deleteChunksForFileTx(tx, fileID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE file_id = ?`, fileID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.ann.deleteFile(fileID)
	return nil
}

// Files returns every known file path.
func (s *memoryStore) Files() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *memoryStore) Close() error {
	return s.db.Close()
}
