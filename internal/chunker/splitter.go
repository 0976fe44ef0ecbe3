// Package chunker implements the recursive greedy-merge tree
// splitter (§4.1), grounded in
// original_source/src/embeddings/code_splitter.rs.
package chunker

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/diffsec/codesearchd/internal/textpos"
)

// DefaultMaxChunkSize matches the per-file default used by the
// original's ProjectFile::chunks (1000 characters); callers that need
// the code_splitter.rs unit-test's looser bound may pass 1500 instead.
const DefaultMaxChunkSize = 1000

// Split walks tree depth-first from its root and returns an ordered,
// non-overlapping list of chunks. The size check compares
// maxChunkSize against node spans; the text between the previous
// sibling and a node, which merge_end carries into the chunk, is not
// counted, so a chunk can exceed maxChunkSize by that gap. A single
// leaf longer than maxChunkSize is emitted whole.
func Split(tree *tree_sitter.Tree, source []byte, maxChunkSize int) []Span {
	if tree == nil || len(source) == 0 {
		return nil
	}
	root := tree.RootNode()
	var chunks []Span
	last := Span{}
	processChildren(&chunks, last, root, source, maxChunkSize)
	return chunks
}

func spanOf(source []byte, n *tree_sitter.Node) Span {
	start := n.StartPosition()
	end := n.EndPosition()
	return fromNode(source, n.StartByte(), n.EndByte(),
		textpos.Position{Row: uint32(start.Row), Column: uint32(start.Column)},
		textpos.Position{Row: uint32(end.Row), Column: uint32(end.Column)})
}

// processChildren implements the per-node recursion described in
// §4.1: for each child of node, either recurse (oversize child),
// flush-and-start-fresh (would overflow current), or merge into the
// running accumulator. last is the carried cursor from the parent's
// point of view, so a descent into an oversize child still resumes
// chunking with context from the previously visited sibling.
func processChildren(out *[]Span, last Span, node *tree_sitter.Node, source []byte, maxChunkSize int) {
	var current *Span
	childCount := node.ChildCount()
	for i := uint(0); i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		childSpan := spanOf(source, child)

		switch {
		case childSpan.chars() > maxChunkSize:
			// Oversize child: flush what we have, then descend,
			// carrying `last` in so the recursive call can still
			// anchor a merge_end to it.
			flush(out, current)
			current = nil
			if child.ChildCount() == 0 {
				// An oversize leaf has nothing to descend into: emit it
				// as one chunk.
				flush(out, &childSpan)
			} else {
				processChildren(out, last, child, source, maxChunkSize)
			}

		case current != nil && current.chars()+childSpan.chars() > maxChunkSize:
			flush(out, current)
			merged := mergeEnd(last, childSpan, source)
			current = &merged

		default:
			newSpan := mergeEnd(last, childSpan, source)
			if current != nil && !current.IsEmpty() {
				m := merge(*current, newSpan, source)
				current = &m
			} else {
				current = &newSpan
			}
		}

		last = childSpan
	}
	flush(out, current)
}

// flush appends current to out if it is non-empty, per §4.1
// ("Empty chunks... are never emitted").
func flush(out *[]Span, current *Span) {
	if current == nil || current.IsEmpty() {
		return
	}
	*out = append(*out, *current)
}
