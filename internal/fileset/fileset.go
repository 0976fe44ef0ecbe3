// Package fileset implements the Project File Set (§4.3):
// discovery, incremental create-or-update, and hydration of output
// chunks with in-memory source text. Grounded in
// original_source/src/embeddings/project_files.rs's `ProjectFiles`,
// using skip-and-log error handling in place of the original's
// propagate-on-error loop (§4.3 explicitly requires "skip files whose
// construction fails").
package fileset

import (
	"os"
	"path/filepath"

	"github.com/diffsec/codesearchd/internal/chunker"
	"github.com/diffsec/codesearchd/internal/fileindex"
	"github.com/diffsec/codesearchd/internal/logx"
)

// OutputChunk is a hydration request/response pair: a span identified
// by path + byte/row/column range, filled in with text once resolved
// against a known FileIndex (§4.5 "OutputChunk").
type OutputChunk struct {
	Path      string
	StartByte uint
	EndByte   uint
	StartRow  uint32
	StartCol  uint32
	EndRow    uint32
	EndCol    uint32
	Content   string
}

// FileSet enumerates files under a project root and maps path to
// FileIndex.
type FileSet struct {
	Root    string
	files   map[string]*fileindex.FileIndex
	ignores *ignoreRules
}

// New performs a full scan of root (§4.3 "new(root) -> full
// scan").
func New(root string) (*FileSet, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fs := &FileSet{
		Root:    abs,
		files:   make(map[string]*fileindex.FileIndex),
		ignores: newIgnoreRules(abs),
	}
	if err := fs.scan(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileSet) scan() error {
	return filepath.Walk(fs.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logx.Warn("walk %s: %v", path, err)
			return nil
		}
		rel, relErr := filepath.Rel(fs.Root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if info.IsDir() {
			if fs.ignores.match(relSlash, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if fs.ignores.match(relSlash, false) {
			return nil
		}
		if !fileindex.Supported(path) {
			// UnsupportedLanguage: logged and skipped at scan time
			// (§4.2/§4.3), not an error.
			logx.Debug("skip %s: unsupported extension", path)
			return nil
		}

		fi, err := fileindex.New(path)
		if err != nil {
			// "skip files whose construction fails (log and
			// continue — a single malformed file must not abort
			// project bring-up)" (§4.3).
			logx.Warn("index %s: %v", path, err)
			return nil
		}
		fs.files[path] = fi
		return nil
	})
}

// CreateOrUpdate re-indexes path if known, or constructs and inserts
// a new FileIndex (§4.3 "create_or_update(path)").
func (fs *FileSet) CreateOrUpdate(path string) error {
	if fi, ok := fs.files[path]; ok {
		return fi.Update()
	}
	fi, err := fileindex.New(path)
	if err != nil {
		return err
	}
	fs.files[path] = fi
	return nil
}

// Remove drops path from the set, handling file deletion (see
// DESIGN.md's Open Question decisions).
func (fs *FileSet) Remove(path string) {
	if fi, ok := fs.files[path]; ok {
		fi.Close()
		delete(fs.files, path)
	}
}

// AllChunks returns chunks for every known file (§4.3
// "all_chunks()").
func (fs *FileSet) AllChunks(maxChunkSize int) map[string][]chunker.Span {
	out := make(map[string][]chunker.Span, len(fs.files))
	for path, fi := range fs.files {
		out[path] = fi.Chunks(maxChunkSize)
	}
	return out
}

// FileChunks returns chunks for path, or nil if unknown (§4.3
// "file_chunks(path)").
func (fs *FileSet) FileChunks(path string, maxChunkSize int) []chunker.Span {
	fi, ok := fs.files[path]
	if !ok {
		return nil
	}
	return fi.Chunks(maxChunkSize)
}

// Hydrate fills in Content for each OutputChunk by reading from the
// in-memory FileIndex text, dropping spans whose path is unknown
// (§4.3 "hydrate(output_chunks)").
func (fs *FileSet) Hydrate(chunks []OutputChunk) []OutputChunk {
	result := make([]OutputChunk, 0, len(chunks))
	for _, c := range chunks {
		fi, ok := fs.files[c.Path]
		if !ok {
			continue
		}
		text := fi.Text()
		if int(c.EndByte) > len(text) || c.StartByte > c.EndByte {
			continue
		}
		c.Content = string(text[c.StartByte:c.EndByte])
		result = append(result, c)
	}
	return result
}

// Paths returns every currently known file path.
func (fs *FileSet) Paths() []string {
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	return paths
}

// Close releases every FileIndex's parser/tree resources.
func (fs *FileSet) Close() {
	for _, fi := range fs.files {
		fi.Close()
	}
}
