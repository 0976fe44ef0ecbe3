package projectindexer

import (
	"context"

	"github.com/diffsec/codesearchd/internal/codesearch"
	"github.com/diffsec/codesearchd/internal/embedding"
	"github.com/diffsec/codesearchd/internal/fileset"
	"github.com/diffsec/codesearchd/internal/vectorstore"
)

// searchCode implements §4.6 "Search": embed [query], take the
// first vector, store.search(vec, 5), hydrate, return. Failures in
// embedding or store are mapped to Internal errors.
func searchCode(fs *fileset.FileSet, oracle embedding.Provider, store vectorstore.Store, query string, maxChunkSize int) ([]ResponseChunk, error) {
	embeddings, err := oracle.EmbedBatch(context.Background(), []string{query})
	if err != nil || len(embeddings) == 0 {
		return nil, codesearch.AsInternal("projectindexer.searchCode", err)
	}

	hits, err := store.Search(embeddings[0], defaultSearchK)
	if err != nil {
		return nil, codesearch.AsInternal("projectindexer.searchCode", err)
	}

	outputs := make([]fileset.OutputChunk, len(hits))
	for i, h := range hits {
		outputs[i] = h.Chunk
	}
	hydrated := fs.Hydrate(outputs)

	responses := make([]ResponseChunk, len(hydrated))
	for i, c := range hydrated {
		responses[i] = ResponseChunk{
			Path:        c.Path,
			RowStart:    c.StartRow,
			RowEnd:      c.EndRow,
			ColumnStart: c.StartCol,
			ColumnEnd:   c.EndCol,
			Content:     c.Content,
		}
	}
	return responses, nil
}

// fileUpdated implements §4.6 "FileUpdated": create_or_update,
// file_chunks, embed, upsert_file. Any failed step abandons the
// update and leaves the store's prior state for that file untouched,
// because upsert only runs once every prior step has produced a
// value.
func fileUpdated(fs *fileset.FileSet, oracle embedding.Provider, store vectorstore.Store, path string, maxChunkSize int) error {
	if err := fs.CreateOrUpdate(path); err != nil {
		return err
	}

	spans := fs.FileChunks(path, maxChunkSize)
	if len(spans) == 0 {
		return store.DeleteFile(path)
	}

	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.Text
	}
	embeddings, err := oracle.EmbedBatch(context.Background(), texts)
	if err != nil {
		return codesearch.New(codesearch.KindEmbeddingFailed, "projectindexer.fileUpdated", path, err)
	}

	return upsert(store, path, spans, embeddings)
}
