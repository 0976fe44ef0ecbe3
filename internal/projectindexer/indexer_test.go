package projectindexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diffsec/codesearchd/internal/vectorstore"
)

// fakeProvider is a small deterministic stand-in for the Embedding
// Oracle (§4.4 treats it as an external pure function; tests
// must not depend on a real model). It embeds a keyword-presence
// bag-of-words vector so that semantically distinct snippets produce
// distinguishable vectors.
type fakeProvider struct{}

var keywords = []string{"add", "subtract", "sub", "mul"}

func (fakeProvider) Name() string { return "fake" }

func (fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := fakeProvider{}.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float32, len(keywords))
		for j, kw := range keywords {
			if strings.Contains(lower, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

func (fakeProvider) Dimension() int { return len(keywords) }
func (fakeProvider) Close() error   { return nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexer_TinyProjectExactMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.go", "package lib\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n")

	store, err := vectorstore.New()
	require.NoError(t, err)
	defer store.Close()

	idx, err := New(dir, fakeProvider{}, store, DefaultMaxChunkSize)
	require.NoError(t, err)
	require.NoError(t, idx.WaitReady())
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := idx.SearchCode(ctx, "add two numbers")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Contains(t, results[0].Content, "Add")
}

func TestIndexer_IncrementalUpdate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.go", "package lib\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n")

	store, err := vectorstore.New()
	require.NoError(t, err)
	defer store.Close()

	idx, err := New(dir, fakeProvider{}, store, DefaultMaxChunkSize)
	require.NoError(t, err)
	require.NoError(t, idx.WaitReady())
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, os.WriteFile(path, []byte("package lib\n\nfunc Sub(a, b int) int {\n\treturn a - b\n}\n"), 0o644))
	require.NoError(t, idx.FileUpdated(ctx, path))

	results, err := idx.SearchCode(ctx, "subtract")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Contains(t, results[0].Content, "Sub")

	addResults, err := idx.SearchCode(ctx, "add")
	require.NoError(t, err)
	for _, r := range addResults {
		require.NotContains(t, r.Content, "func Add")
	}
}
