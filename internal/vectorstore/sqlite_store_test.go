package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func vec(first float32, rest ...float32) []float32 {
	return append([]float32{first}, rest...)
}

func TestUpsertAndSearch(t *testing.T) {
	store, err := New()
	require.NoError(t, err)
	defer store.Close()

	chunks := []ChunkSpan{
		{StartByte: 0, EndByte: 10, StartRow: 0, EndRow: 0, StartCol: 0, EndCol: 10},
	}
	embeddings := [][]float32{vec(1, 0, 0)}
	require.NoError(t, store.UpsertFile("a.go", chunks, embeddings))

	hits, err := store.Search(vec(1, 0, 0), 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "a.go", hits[0].Chunk.Path)
	require.InDelta(t, 0.0, hits[0].Distance, 1e-5)
}

func TestUpsertReplacesPriorChunks(t *testing.T) {
	store, err := New()
	require.NoError(t, err)
	defer store.Close()

	chunks1 := []ChunkSpan{{StartByte: 0, EndByte: 5}}
	require.NoError(t, store.UpsertFile("a.go", chunks1, [][]float32{vec(1, 0, 0)}))

	chunks2 := []ChunkSpan{{StartByte: 0, EndByte: 7}}
	require.NoError(t, store.UpsertFile("a.go", chunks2, [][]float32{vec(0, 1, 0)}))

	hits, err := store.Search(vec(0, 1, 0), 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.EqualValues(t, 7, hits[0].Chunk.EndByte)
}

func TestDeleteFileRemovesRows(t *testing.T) {
	store, err := New()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.UpsertFile("a.go", []ChunkSpan{{EndByte: 3}}, [][]float32{vec(1, 0, 0)}))
	require.NoError(t, store.DeleteFile("a.go"))

	files, err := store.Files()
	require.NoError(t, err)
	require.Empty(t, files)

	hits, err := store.Search(vec(1, 0, 0), 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestMismatchedCounts(t *testing.T) {
	store, err := New()
	require.NoError(t, err)
	defer store.Close()

	err = store.UpsertFile("a.go", []ChunkSpan{{EndByte: 3}, {EndByte: 5}}, [][]float32{vec(1, 0, 0)})
	require.Error(t, err)
}
