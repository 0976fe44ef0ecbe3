package vectorstore

import (
	"math"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"
)

// cosineIndex is the approximate nearest-neighbor index over chunk
// embeddings (§4.5: "a nearest-neighbor index over embedding...
// the specific metric must match what the embedding oracle was
// trained for"). A brute-force scan rather than a graph index —
// exact over small-to-medium per-project indexes, using viterin/vek's
// SIMD dot product for the hot inner loop.
type cosineIndex struct {
	mu      sync.RWMutex
	vectors map[int64][]float32
	fileOf  map[int64]int64
	deleted map[int64]bool
}

func newCosineIndex() *cosineIndex {
	return &cosineIndex{
		vectors: make(map[int64][]float32),
		fileOf:  make(map[int64]int64),
		deleted: make(map[int64]bool),
	}
}

func (idx *cosineIndex) insert(chunkID, fileID int64, vec []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors[chunkID] = vec
	idx.fileOf[chunkID] = fileID
	delete(idx.deleted, chunkID)
}

func (idx *cosineIndex) deleteFile(fileID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for chunkID, f := range idx.fileOf {
		if f == fileID {
			idx.deleted[chunkID] = true
		}
	}
}

type candidate struct {
	chunkID  int64
	distance float32
}

// search returns the k lowest-distance, non-deleted vectors, ascending
// by distance (§4.5 "search").
func (idx *cosineIndex) search(query []float32, k int) []candidate {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := make([]candidate, 0, len(idx.vectors))
	for chunkID, vec := range idx.vectors {
		if idx.deleted[chunkID] {
			continue
		}
		candidates = append(candidates, candidate{chunkID: chunkID, distance: cosineDistance(query, vec)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// cosineDistance computes 1 - cosine similarity, using vek32's SIMD
// dot product.
func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1.0
	}
	dot := vek32.Dot(a, b)
	normA := float32(math.Sqrt(float64(vek32.Dot(a, a))))
	normB := float32(math.Sqrt(float64(vek32.Dot(b, b))))
	if normA == 0 || normB == 0 {
		return 1.0
	}
	similarity := dot / (normA * normB)
	if similarity > 1.0 {
		similarity = 1.0
	} else if similarity < -1.0 {
		similarity = -1.0
	}
	return 1.0 - similarity
}
