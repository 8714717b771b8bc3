package index

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestBuild_NoVectors(t *testing.T) {
	if _, err := Build(nil, DefaultConfig()); err != ErrNoVectors {
		t.Errorf("expected ErrNoVectors, got %v", err)
	}
}

func TestBuild_DimensionMismatch(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1, 0}}

	if _, err := Build(vectors, DefaultConfig()); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSearch_FindsNearest(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.9, 0.1, 0},
	}
	h, err := Build(vectors, DefaultConfig())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	hits, err := h.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Ordinal != 0 {
		t.Errorf("expected ordinal 0 closest, got %d", hits[0].Ordinal)
	}
	if hits[1].Ordinal != 3 {
		t.Errorf("expected ordinal 3 second, got %d", hits[1].Ordinal)
	}
}

func TestSearch_AscendingDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vectors := make([][]float32, 200)
	for i := range vectors {
		v := make([]float32, 8)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
	}

	h, err := Build(vectors, Config{M: 16, EfConstruction: 64, EfSearch: 64})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	query := make([]float32, 8)
	for j := range query {
		query[j] = rng.Float32()
	}

	hits, err := h.Search(query, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 10 {
		t.Fatalf("expected 10 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ascending at %d: %f < %f", i, hits[i].Distance, hits[i-1].Distance)
		}
	}
}

func TestSearch_RecallOnSmallCorpus(t *testing.T) {
	// With ef well above the corpus size the graph search is
	// effectively exhaustive, so results must match brute force.
	rng := rand.New(rand.NewSource(11))
	vectors := make([][]float32, 50)
	for i := range vectors {
		v := make([]float32, 4)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
	}

	h, err := Build(vectors, Config{M: 8, EfConstruction: 64, EfSearch: 64})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	query := []float32{0.5, 0.5, 0.5, 0.5}
	hits, err := h.Search(query, 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	type pair struct {
		ord  int
		dist float64
	}
	brute := make([]pair, len(vectors))
	for i, v := range vectors {
		var sum float64
		for j := range v {
			d := float64(query[j]) - float64(v[j])
			sum += d * d
		}
		brute[i] = pair{i, sum}
	}
	sort.Slice(brute, func(i, j int) bool {
		if brute[i].dist != brute[j].dist {
			return brute[i].dist < brute[j].dist
		}
		return brute[i].ord < brute[j].ord
	})

	for i, hit := range hits {
		if hit.Ordinal != brute[i].ord {
			t.Errorf("hit %d: got ordinal %d, want %d", i, hit.Ordinal, brute[i].ord)
		}
		if math.Abs(hit.Distance-brute[i].dist) > 1e-9 {
			t.Errorf("hit %d: got distance %f, want %f", i, hit.Distance, brute[i].dist)
		}
	}
}

func TestSearch_TiesByInsertionOrder(t *testing.T) {
	vectors := [][]float32{
		{0, 1},
		{1, 0},
		{1, 0},
		{1, 0},
	}
	h, err := Build(vectors, DefaultConfig())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	hits, err := h.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	want := []int{1, 2, 3}
	for i, hit := range hits {
		if hit.Ordinal != want[i] {
			t.Errorf("hit %d: got ordinal %d, want %d", i, hit.Ordinal, want[i])
		}
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}
	h, err := Build(vectors, DefaultConfig())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	hits, err := h.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected hits clamped to index size, got %d", len(hits))
	}
}

func TestBuild_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vectors := make([][]float32, 30)
	for i := range vectors {
		v := make([]float32, 4)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
	}

	a, err := Build(vectors, DefaultConfig())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	b, err := Build(vectors, DefaultConfig())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	query := []float32{0.25, 0.5, 0.75, 1}
	hitsA, _ := a.Search(query, 5)
	hitsB, _ := b.Search(query, 5)

	for i := range hitsA {
		if hitsA[i] != hitsB[i] {
			t.Errorf("non-deterministic result at %d: %v vs %v", i, hitsA[i], hitsB[i])
		}
	}
}
