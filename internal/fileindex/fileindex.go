// Package fileindex owns per-file parser/text/hash/tree state (§4.2), grounded in original_source/src/embeddings/project_files.rs's
// `ProjectFile`.
package fileindex

import (
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/crypto/blake2b"

	"github.com/diffsec/codesearchd/internal/chunker"
	"github.com/diffsec/codesearchd/internal/codesearch"
)

// FileIndex owns a parser bound to a language derived from the file's
// extension, its current text, a Blake2b-512 content hash, and the
// active parse tree. Not thread-safe; owned exclusively by one
// Project Indexer (§3 "FileIndex").
type FileIndex struct {
	Path   string
	parser *tree_sitter.Parser
	text   []byte
	Hash   [64]byte
	tree   *tree_sitter.Tree
}

// extension returns the lower-cased extension (no leading dot).
func extension(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Supported reports whether path's extension has a registered
// language binding.
func Supported(path string) bool {
	return chunker.SupportedExtension(extension(path))
}

// New reads path, hashes it, and parses a fresh tree. Fails with
// UnsupportedLanguage, Io, or ParseFailed (§4.2 "new(path)").
func New(path string) (*FileIndex, error) {
	lang, ok := chunker.LanguageForExtension(extension(path))
	if !ok {
		return nil, codesearch.New(codesearch.KindUnsupportedLanguage, "fileindex.New", path, errUnsupported(extension(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codesearch.New(codesearch.KindIO, "fileindex.New", path, err)
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, codesearch.New(codesearch.KindUnsupportedLanguage, "fileindex.New", path, err)
	}

	tree := parser.Parse(data, nil)
	if tree == nil {
		parser.Close()
		return nil, codesearch.New(codesearch.KindParseFailed, "fileindex.New", path, errParseFailed())
	}

	return &FileIndex{
		Path:   path,
		parser: parser,
		text:   data,
		Hash:   blake2b.Sum512(data),
		tree:   tree,
	}, nil
}

// Update re-reads the file and re-parses it, supplying the previous
// tree as a reparse hint for incremental parsing (§4.2
// "update()"). On parse failure the previous tree and text remain
// valid, per spec's re-parse hint behavior.
func (f *FileIndex) Update() error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return codesearch.New(codesearch.KindIO, "fileindex.Update", f.Path, err)
	}

	newTree := f.parser.Parse(data, f.tree)
	if newTree == nil {
		return codesearch.New(codesearch.KindParseFailed, "fileindex.Update", f.Path, errParseFailed())
	}

	f.tree.Close()
	f.tree = newTree
	f.text = data
	f.Hash = blake2b.Sum512(data)
	return nil
}

// Text returns the file's current in-memory source text. Hydration
// must read from here, not the filesystem, to guarantee consistency
// with the embedded chunks (§4.3).
func (f *FileIndex) Text() []byte { return f.text }

// Chunks delegates to the Chunker (§4.2 "chunks(max_size)").
func (f *FileIndex) Chunks(maxChunkSize int) []chunker.Span {
	return chunker.Split(f.tree, f.text, maxChunkSize)
}

// Close releases the parser and tree.
func (f *FileIndex) Close() {
	if f.tree != nil {
		f.tree.Close()
	}
	if f.parser != nil {
		f.parser.Close()
	}
}

func errUnsupported(ext string) error {
	return &unsupportedExtensionError{ext: ext}
}

type unsupportedExtensionError struct{ ext string }

func (e *unsupportedExtensionError) Error() string {
	return "unsupported file extension: " + e.ext
}

func errParseFailed() error { return parseFailedError{} }

type parseFailedError struct{}

func (parseFailedError) Error() string { return "parser returned no tree" }
