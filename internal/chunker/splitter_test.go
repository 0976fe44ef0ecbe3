package chunker

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/stretchr/testify/require"
)

func parseGo(t *testing.T, source string) (*tree_sitter.Tree, []byte) {
	t.Helper()
	parser := tree_sitter.NewParser()
	defer parser.Close()
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	require.NoError(t, parser.SetLanguage(lang))
	src := []byte(source)
	tree := parser.Parse(src, nil)
	require.NotNil(t, tree)
	return tree, src
}

const sampleSource = `package sample

// Add returns the sum of two integers.
func Add(a, b int) int {
	return a + b
}

// Sub returns the difference of two integers.
func Sub(a, b int) int {
	return a - b
}
`

func TestSplit_OrderedNonOverlapping(t *testing.T) {
	tree, src := parseGo(t, sampleSource)
	defer tree.Close()

	chunks := Split(tree, src, DefaultMaxChunkSize)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		require.LessOrEqual(t, c.StartByte, c.EndByte)
		require.False(t, c.IsEmpty())
		if i > 0 {
			prev := chunks[i-1]
			require.LessOrEqualf(t, prev.EndByte, c.StartByte, "chunk %d overlaps chunk %d", i-1, i)
		}
	}
}

func TestSplit_RespectsMaxSize(t *testing.T) {
	tree, src := parseGo(t, sampleSource)
	defer tree.Close()

	const limit = 50
	chunks := Split(tree, src, limit)
	for _, c := range chunks {
		// No node of the sample source is longer than limit (the
		// longest, the Sub doc comment, is 46 characters), so none of
		// these chunks is an oversize leaf, and the gaps merge_end
		// carries in are at most one newline; every chunk here must
		// respect the bound directly.
		require.LessOrEqual(t, c.chars(), limit)
	}
}

func TestSplit_EmptySource(t *testing.T) {
	require.Nil(t, Split(nil, nil, DefaultMaxChunkSize))
}

func TestSplit_OversizeFunctionYieldsChunks(t *testing.T) {
	// A single function whose body alone exceeds max_chunk_size is
	// descended into rather than dropped, so the file still yields
	// non-empty chunks (scenario 6 in §8).
	var body string
	for i := 0; i < 200; i++ {
		body += "x = x + 1\n"
	}
	source := "package sample\n\nfunc Big() {\n" + body + "}\n"
	tree, src := parseGo(t, source)
	defer tree.Close()

	chunks := Split(tree, src, 50)
	require.NotEmpty(t, chunks)

	var covered int
	for _, c := range chunks {
		covered += int(c.EndByte - c.StartByte)
	}
	require.Greater(t, covered, 0)
}
