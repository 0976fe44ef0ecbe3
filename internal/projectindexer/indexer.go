// Package projectindexer implements the Project Indexer actor
// (§4.6): a single worker goroutine per project root, owning a
// ProjectFileSet, a Vector Store, and an embedding oracle handle,
// serviced through a bounded mailbox. Grounded in
// original_source/src/embeddings/project_service.rs's
// `ProjectService`/`ProjectStub` (translated from
// tokio::sync::mpsc+oneshot to Go channels) for bring-up/update
// orchestration. FileUpdated always re-chunks and re-embeds the
// changed file, the same as the original's own `hash` field on
// ProjectFile: present, but never read back to skip a re-embed.
package projectindexer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/diffsec/codesearchd/internal/chunker"
	"github.com/diffsec/codesearchd/internal/codesearch"
	"github.com/diffsec/codesearchd/internal/embedding"
	"github.com/diffsec/codesearchd/internal/fileset"
	"github.com/diffsec/codesearchd/internal/logx"
	"github.com/diffsec/codesearchd/internal/vectorstore"
)

// mailboxCapacity bounds the actor's request queue; sends beyond this
// back-pressure the caller (§5 "bounded... back-pressures on
// overload").
const mailboxCapacity = 32

// DefaultMaxChunkSize is used when embedding/storing chunks, matching
// chunker.DefaultMaxChunkSize without importing the chunker package
// into this public API.
const DefaultMaxChunkSize = 1000

// defaultSearchK is the reference search fan-out (§4.5 "search").
const defaultSearchK = 5

// ResponseChunk is the wire shape returned across the RPC boundary
// (§6 "ResponseChunk").
type ResponseChunk struct {
	Path        string
	RowStart    uint32
	RowEnd      uint32
	ColumnStart uint32
	ColumnEnd   uint32
	Content     string
}

type searchRequest struct {
	query   string
	respond chan searchResponse
}

type searchResponse struct {
	chunks []ResponseChunk
	err    error
}

type fileUpdatedRequest struct {
	path    string
	respond chan error
}

// Indexer is the handle a Dispatcher hands to callers; it forwards
// requests onto the actor's mailbox and never touches indexing state
// directly (§4.7 "the dispatcher never performs indexing work
// itself").
type Indexer struct {
	root     string
	mailbox  chan interface{}
	readyErr chan error
}

// New spawns the actor goroutine, which performs bring-up (full scan,
// then embed+upsert every file) before servicing its mailbox.
// Messages sent during bring-up simply queue (§4.6 "Bring-up").
func New(root string, oracle embedding.Provider, store vectorstore.Store, maxChunkSize int) (*Indexer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	idx := &Indexer{
		root:     abs,
		mailbox:  make(chan interface{}, mailboxCapacity),
		readyErr: make(chan error, 1),
	}

	go idx.run(oracle, store, maxChunkSize)
	return idx, nil
}

func (idx *Indexer) run(oracle embedding.Provider, store vectorstore.Store, maxChunkSize int) {
	fs, err := fileset.New(idx.root)
	if err != nil {
		idx.readyErr <- fmt.Errorf("bring-up scan failed: %w", err)
		idx.drainMailboxWithError(fmt.Errorf("project bring-up failed: %w", err))
		return
	}
	defer fs.Close()

	if err := bringUp(fs, oracle, store, maxChunkSize); err != nil {
		idx.readyErr <- err
		idx.drainMailboxWithError(err)
		return
	}
	idx.readyErr <- nil

	for msg := range idx.mailbox {
		switch m := msg.(type) {
		case searchRequest:
			chunks, err := searchCode(fs, oracle, store, m.query, maxChunkSize)
			m.respond <- searchResponse{chunks: chunks, err: err}
		case fileUpdatedRequest:
			m.respond <- fileUpdated(fs, oracle, store, m.path, maxChunkSize)
		}
	}
}

func (idx *Indexer) drainMailboxWithError(err error) {
	for msg := range idx.mailbox {
		switch m := msg.(type) {
		case searchRequest:
			m.respond <- searchResponse{err: err}
		case fileUpdatedRequest:
			m.respond <- err
		}
	}
}

// bringUp embeds and upserts every file discovered by the scan (§4.6 "Bring-up").
func bringUp(fs *fileset.FileSet, oracle embedding.Provider, store vectorstore.Store, maxChunkSize int) error {
	for path, spans := range fs.AllChunks(maxChunkSize) {
		if len(spans) == 0 {
			continue
		}
		texts := make([]string, len(spans))
		for i, s := range spans {
			texts[i] = s.Text
		}
		embeddings, err := oracle.EmbedBatch(context.Background(), texts)
		if err != nil {
			logx.Warn("bring-up embed %s: %v", path, err)
			continue
		}
		if err := upsert(store, path, spans, embeddings); err != nil {
			logx.Warn("bring-up upsert %s: %v", path, err)
		}
	}
	return nil
}

func toChunkSpans(spans []chunker.Span) []vectorstore.ChunkSpan {
	rows := make([]vectorstore.ChunkSpan, len(spans))
	for i, s := range spans {
		rows[i] = vectorstore.ChunkSpan{
			StartByte: s.StartByte,
			EndByte:   s.EndByte,
			StartRow:  s.Start.Row,
			StartCol:  s.Start.Column,
			EndRow:    s.End.Row,
			EndCol:    s.End.Column,
		}
	}
	return rows
}

func upsert(store vectorstore.Store, path string, spans []chunker.Span, embeddings [][]float32) error {
	if err := store.UpsertFile(path, toChunkSpans(spans), embeddings); err != nil {
		return codesearch.New(codesearch.KindStoreFailed, "projectindexer.upsert", path, err)
	}
	return nil
}

// SearchCode embeds the query, searches the vector store, hydrates
// results with source text, and returns them (§4.6 "Search").
func (idx *Indexer) SearchCode(ctx context.Context, query string) ([]ResponseChunk, error) {
	respond := make(chan searchResponse, 1)
	select {
	case idx.mailbox <- searchRequest{query: query, respond: respond}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-respond:
		return resp.chunks, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FileUpdated re-indexes path: CreateOrUpdate, chunk, embed, upsert.
// If any step fails, the update is abandoned and the store retains
// its prior state for that file (§4.6 "FileUpdated").
func (idx *Indexer) FileUpdated(ctx context.Context, path string) error {
	respond := make(chan error, 1)
	select {
	case idx.mailbox <- fileUpdatedRequest{path: path, respond: respond}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-respond:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitReady blocks until bring-up has completed (or failed).
func (idx *Indexer) WaitReady() error {
	err := <-idx.readyErr
	idx.readyErr <- err // allow repeated callers to observe the same result
	return err
}

// Close shuts down the actor goroutine; callers must not send further
// requests afterward. The Dispatcher never evicts projects and does
// not call it.
func (idx *Indexer) Close() {
	close(idx.mailbox)
}
