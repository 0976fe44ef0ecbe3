// Package dispatcher implements the Dispatcher (§4.7): a
// concurrent map from canonicalized project root to Project Indexer
// handle, with an at-most-once GetOrCreate enforced even under
// concurrent calls for the same root. Grounded in
// original_source/src/bin/code_search_server.rs's
// `self.0.entry(project_path.clone()).or_insert_with(...)` over a
// `DashMap`; Go has no direct equivalent, so this uses the two-phase
// pattern §9 "Dispatcher entry atomicity" calls out explicitly as
// acceptable ("a two-phase commit with a per-key lock") — a
// mutex-guarded map of placeholder entries, each resolved exactly
// once by whichever caller first claims the key.
package dispatcher

import (
	"path/filepath"
	"sync"

	"github.com/diffsec/codesearchd/internal/embedding"
	"github.com/diffsec/codesearchd/internal/projectindexer"
	"github.com/diffsec/codesearchd/internal/vectorstore"
)

// Factory constructs a fresh Project Indexer for a canonical root. The
// Dispatcher calls this at most once per root while a creation is
// pending or has succeeded; a failed creation is not cached, so the
// next GetOrCreate for that root calls it again.
type Factory func(root string) (*projectindexer.Indexer, error)

type entry struct {
	ready   chan struct{}
	indexer *projectindexer.Indexer
	err     error
}

// Dispatcher routes requests to per-project actors, creating them on
// demand (§4.7). It never performs indexing work itself.
type Dispatcher struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
}

// New creates a Dispatcher that constructs indexers via factory.
func New(factory Factory) *Dispatcher {
	return &Dispatcher{
		entries: make(map[string]*entry),
		factory: factory,
	}
}

// NewDefault builds a Dispatcher whose factory constructs a
// projectindexer.Indexer backed by a fresh in-memory vectorstore and
// the given embedding oracle — the composition every `serve` binary
// needs (§4.6/§4.7 wired together).
func NewDefault(oracle embedding.Provider, maxChunkSize int) *Dispatcher {
	return New(func(root string) (*projectindexer.Indexer, error) {
		store, err := vectorstore.New()
		if err != nil {
			return nil, err
		}
		idx, err := projectindexer.New(root, oracle, store, maxChunkSize)
		if err != nil {
			store.Close()
			return nil, err
		}
		return idx, nil
	})
}

// GetOrCreate canonicalizes root and returns the existing handle, or
// constructs and inserts a new one (§4.7 "get_or_create(root)").
// At-most-once creation holds even under concurrent calls with the
// same root (§8).
func (d *Dispatcher) GetOrCreate(root string) (*projectindexer.Indexer, error) {
	canonical, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	canonical, err = filepath.EvalSymlinks(canonical)
	if err != nil {
		// Fall back to the absolute, non-symlink-resolved path: a
		// root that doesn't exist yet (tests, not-yet-created
		// projects) must still canonicalize deterministically.
		canonical, err = filepath.Abs(root)
		if err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	e, exists := d.entries[canonical]
	if !exists {
		e = &entry{ready: make(chan struct{})}
		d.entries[canonical] = e
	}
	d.mu.Unlock()

	if exists {
		<-e.ready
		return e.indexer, e.err
	}

	e.indexer, e.err = d.factory(canonical)
	close(e.ready)
	if e.err != nil {
		d.mu.Lock()
		delete(d.entries, canonical)
		d.mu.Unlock()
	}
	return e.indexer, e.err
}

// Roots returns every canonical root currently registered.
func (d *Dispatcher) Roots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	roots := make([]string, 0, len(d.entries))
	for r := range d.entries {
		roots = append(roots, r)
	}
	return roots
}
