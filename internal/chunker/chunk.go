package chunker

import "github.com/diffsec/codesearchd/internal/textpos"

// Span is a byte-accurate, position-accurate slice of source text —
// the unit the chunker both consumes (node spans) and produces
// (chunks). Grounded in original_source/src/embeddings/code_splitter.rs's
// `Chunk<'a>` struct.
//
// Invariants (§3): StartByte <= EndByte; Start <= End
// lexicographically; len(Text) == EndByte-StartByte.
type Span struct {
	Text      string
	StartByte uint
	EndByte   uint
	Start     textpos.Position
	End       textpos.Position
}

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool {
	return s.StartByte == s.EndByte
}

// chars returns the character count (not byte count) of the span,
// since max_chunk_size is a character bound (§4.1: "multi-byte
// safe").
func (s Span) chars() int {
	return len([]rune(s.Text))
}

// fromNode builds a Span from a node's byte range and points, slicing
// the caller-supplied source text.
func fromNode(source []byte, startByte, endByte uint, start, end textpos.Position) Span {
	return Span{
		Text:      string(source[startByte:endByte]),
		StartByte: startByte,
		EndByte:   endByte,
		Start:     start,
		End:       end,
	}
}

// merge returns the span running from self's start to other's end,
// taking the lexicographic min/max of both endpoints' positions
// (code_splitter.rs `Chunk::merge`).
func merge(self, other Span, source []byte) Span {
	start := textpos.Min(self.Start, other.Start)
	end := textpos.Max(self.End, other.End)
	return Span{
		Text:      string(source[self.StartByte:other.EndByte]),
		StartByte: self.StartByte,
		EndByte:   other.EndByte,
		Start:     start,
		End:       end,
	}
}

// mergeEnd returns a span running from self's END to other's end —
// anchoring a new chunk to the end of the previous sibling rather
// than the start of the next one, so that whitespace, comments, and
// attributes between siblings are preserved (code_splitter.rs
// `Chunk::merge_end`; §4.1 "why").
func mergeEnd(self, other Span, source []byte) Span {
	start := textpos.Min(self.End, other.Start)
	end := textpos.Max(self.End, other.End)
	return Span{
		Text:      string(source[self.EndByte:other.EndByte]),
		StartByte: self.EndByte,
		EndByte:   other.EndByte,
		Start:     start,
		End:       end,
	}
}
