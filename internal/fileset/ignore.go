package fileset

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignoreRules is a small gitignore-style matcher: patterns are
// matched in file order with "last matching pattern wins" semantics,
// including `!`-prefixed negation, mirroring the hand-rolled walker in
// ferg-cod3s-conexus's internal/indexer/walker.go (no example repo in
// the pack wires a dedicated gitignore library to this concern).
type ignoreRules struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	raw      string
	negate   bool
	dirOnly  bool
	anchored bool
}

// defaultIgnoreDirs is the hardcoded set of directory names never
// walked into, regardless of .gitignore contents.
var defaultIgnoreDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	"__pycache__":  true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

func newIgnoreRules(root string) *ignoreRules {
	r := &ignoreRules{}
	r.load(filepath.Join(root, ".gitignore"))
	return r
}

func (r *ignoreRules) load(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ignorePattern{raw: line}
		if strings.HasPrefix(line, "!") {
			p.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			p.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		p.raw = line
		r.patterns = append(r.patterns, p)
	}
}

// match reports whether relPath (slash-separated, relative to root)
// should be ignored. Directory-component checks (node_modules/ etc.)
// are applied first, then .gitignore patterns in order, last match
// wins.
func (r *ignoreRules) match(relPath string, isDir bool) bool {
	for _, part := range strings.Split(relPath, "/") {
		if defaultIgnoreDirs[part] || (strings.HasPrefix(part, ".") && part != "." && part != "..") {
			return true
		}
	}

	ignored := false
	for _, p := range r.patterns {
		if p.dirOnly && !isDir {
			// dirOnly patterns can still match an ancestor directory
			// component of a file path.
			matched := false
			for _, part := range strings.Split(relPath, "/") {
				if ok, _ := filepath.Match(p.raw, part); ok {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		} else {
			base := filepath.Base(relPath)
			matchedBase, _ := filepath.Match(p.raw, base)
			matchedFull, _ := filepath.Match(p.raw, relPath)
			if !matchedBase && !matchedFull {
				continue
			}
		}
		ignored = !p.negate
	}
	return ignored
}
