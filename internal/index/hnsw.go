// Package index provides an in-process approximate nearest-neighbor index
// over dense float32 vectors using a hierarchical navigable small world
// (HNSW) graph. The index is built once from all vectors and is read-only
// afterwards: there is no deletion or incremental insertion, rebuilding
// means re-indexing from scratch. The read-only graph is safe for
// unlimited concurrent searchers.
//
// Distances are squared Euclidean over the embedding space. For
// L2-normalized vectors the squared distance relates to cosine similarity
// as d = 2 - 2*cos, so ascending distance order equals descending
// similarity order.
package index

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrNoVectors         = errors.New("no vectors to index")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Config fixes the graph quality parameters at build time. Larger values
// trade latency for recall.
type Config struct {
	// M is the construction breadth: the number of bidirectional links
	// created per node and level.
	M int

	// EfConstruction is the candidate-list size used while building.
	EfConstruction int

	// EfSearch is the candidate-list size used while searching.
	EfSearch int
}

// DefaultConfig mirrors the parameters the service was tuned with
// (M=32, efConstruction=40, efSearch=16).
func DefaultConfig() Config {
	return Config{M: 32, EfConstruction: 40, EfSearch: 16}
}

// Hit is one search result: the ordinal of an indexed vector and its
// squared Euclidean distance to the query.
type Hit struct {
	Ordinal  int
	Distance float64
}

// HNSW is the built graph. Immutable after Build.
type HNSW struct {
	cfg      Config
	dim      int
	vectors  [][]float32
	links    [][][]int // links[node][level] -> neighbor ordinals
	levels   []int
	entry    int
	maxLevel int
	levelMul float64
}

// Build constructs the graph from all vectors at once. Vector ordinals in
// search results refer to positions in the input slice. All vectors must
// share the same dimension.
func Build(vectors [][]float32, cfg Config) (*HNSW, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}
	if cfg.M < 2 {
		cfg.M = 2
	}
	if cfg.EfConstruction < cfg.M {
		cfg.EfConstruction = cfg.M
	}
	if cfg.EfSearch < 1 {
		cfg.EfSearch = 1
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	h := &HNSW{
		cfg:      cfg,
		dim:      dim,
		vectors:  vectors,
		links:    make([][][]int, len(vectors)),
		levels:   make([]int, len(vectors)),
		entry:    -1,
		maxLevel: -1,
		levelMul: 1.0 / math.Log(float64(cfg.M)),
	}

	// Fixed seed: the graph layout must be reproducible for a given
	// input, matching the deterministic-retrieval contract.
	rng := rand.New(rand.NewSource(1))
	for i := range vectors {
		h.insert(i, rng)
	}
	return h, nil
}

// Len returns the number of indexed vectors.
func (h *HNSW) Len() int {
	return len(h.vectors)
}

// Dimension returns the indexed vector dimension.
func (h *HNSW) Dimension() int {
	return h.dim
}

// Search returns up to k nearest vectors, ordered ascending by squared
// distance. Ties are broken by insertion order.
func (h *HNSW) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != h.dim {
		return nil, fmt.Errorf("%w: query has %d dims, want %d", ErrDimensionMismatch, len(query), h.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(h.vectors) {
		k = len(h.vectors)
	}

	cur := h.entry
	for level := h.maxLevel; level > 0; level-- {
		cur = h.greedyClosest(query, cur, level)
	}

	ef := h.cfg.EfSearch
	if ef < k {
		ef = k
	}
	candidates := h.searchLayer(query, cur, ef, 0)
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = Hit{Ordinal: c.id, Distance: c.dist}
	}
	return hits, nil
}

func (h *HNSW) insert(id int, rng *rand.Rand) {
	level := int(math.Floor(-math.Log(rng.Float64()) * h.levelMul))
	h.levels[id] = level
	h.links[id] = make([][]int, level+1)

	if h.entry < 0 {
		h.entry = id
		h.maxLevel = level
		return
	}

	q := h.vectors[id]
	cur := h.entry
	for l := h.maxLevel; l > level; l-- {
		cur = h.greedyClosest(q, cur, l)
	}

	top := level
	if top > h.maxLevel {
		top = h.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates := h.searchLayer(q, cur, h.cfg.EfConstruction, l)
		if len(candidates) == 0 {
			continue
		}
		cur = candidates[0].id

		m := h.cfg.M
		if len(candidates) < m {
			m = len(candidates)
		}
		for _, c := range candidates[:m] {
			h.connect(id, c.id, l)
			h.connect(c.id, id, l)
		}
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entry = id
	}
}

// connect adds dst to src's neighbor list at the given level, pruning the
// list back to its capacity by keeping the closest neighbors.
func (h *HNSW) connect(src, dst, level int) {
	neighbors := append(h.links[src][level], dst)

	capacity := h.cfg.M
	if level == 0 {
		capacity = h.cfg.M * 2
	}
	if len(neighbors) > capacity {
		base := h.vectors[src]
		worst, worstAt := -1.0, -1
		for i, nb := range neighbors {
			if d := squaredDistance(base, h.vectors[nb]); d > worst {
				worst, worstAt = d, i
			}
		}
		neighbors = append(neighbors[:worstAt], neighbors[worstAt+1:]...)
	}
	h.links[src][level] = neighbors
}

// greedyClosest walks level links toward the query until no neighbor is
// closer than the current node.
func (h *HNSW) greedyClosest(query []float32, start, level int) int {
	cur := start
	curDist := squaredDistance(query, h.vectors[cur])
	for {
		improved := false
		for _, nb := range h.neighborsAt(cur, level) {
			if d := squaredDistance(query, h.vectors[nb]); d < curDist {
				cur, curDist = nb, d
				improved = true
			}
		}
		if !improved {
			return cur
		}
	}
}

// searchLayer is the standard HNSW best-first expansion over one level,
// returning up to ef candidates sorted ascending by distance with ties
// broken by ordinal.
func (h *HNSW) searchLayer(query []float32, entry, ef, level int) []candidate {
	start := candidate{id: entry, dist: squaredDistance(query, h.vectors[entry])}

	visited := map[int]bool{entry: true}
	frontier := &minQueue{start}
	results := &maxQueue{start}

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(candidate)
		if results.Len() >= ef && c.dist > (*results)[0].dist {
			break
		}
		for _, nb := range h.neighborsAt(c.id, level) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			d := squaredDistance(query, h.vectors[nb])
			if results.Len() < ef || d < (*results)[0].dist {
				next := candidate{id: nb, dist: d}
				heap.Push(frontier, next)
				heap.Push(results, next)
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(candidate)
	}
	// The max-heap fixes the overall order but not equal-distance ties.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (h *HNSW) neighborsAt(node, level int) []int {
	if level >= len(h.links[node]) {
		return nil
	}
	return h.links[node][level]
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// candidate ordering: ascending distance, ties by insertion ordinal.
type candidate struct {
	id   int
	dist float64
}

func less(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

type minQueue []candidate

func (q minQueue) Len() int            { return len(q) }
func (q minQueue) Less(i, j int) bool  { return less(q[i], q[j]) }
func (q minQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *minQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

type maxQueue []candidate

func (q maxQueue) Len() int            { return len(q) }
func (q maxQueue) Less(i, j int) bool  { return less(q[j], q[i]) }
func (q maxQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *maxQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *maxQueue) Pop() interface{} {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}
