// Package embedding provides the per-run embedding cache.
//
// Vectors are built from weighted partial embeddings (text, neighbourhood,
// structural) and cached under a content fingerprint, so identical logical
// inputs always hit. Entries never expire on their own; Clear drops all of
// them and Evict drops the entries of one id.
package embedding

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// DefaultDimension is the embedding length used when none is configured.
const DefaultDimension = 100

var ErrInvalidDimension = errors.New("embedding: dimension must be positive")

// ErrNoEmbedding is returned when no generator could encode a subject.
var ErrNoEmbedding = errors.New("embedding: no generator produced a vector")

type weightedGenerator struct {
	gen    Generator
	weight float64
}

type cacheEntry struct {
	id     string
	vector []float64
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

type Cache struct {
	dim        int
	generators []weightedGenerator

	mu      sync.Mutex
	entries map[string]cacheEntry
	byID    map[string]map[string]struct{}
	hits    uint64
	misses  uint64
}

// Option customises a Cache.
type Option func(*Cache)

// WithGenerator adds a generator with the given averaging weight.
func WithGenerator(gen Generator, weight float64) Option {
	return func(c *Cache) {
		c.generators = append(c.generators, weightedGenerator{gen: gen, weight: weight})
	}
}

// NewCache creates a cache of dim-length vectors. Without options it uses
// text (0.5), neighbourhood (0.3) and structural (0.2) generators.
func NewCache(dim int, opts ...Option) (*Cache, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	c := &Cache{
		dim:     dim,
		entries: make(map[string]cacheEntry),
		byID:    make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.generators) == 0 {
		c.generators = []weightedGenerator{
			{gen: TextGenerator{}, weight: 0.5},
			{gen: NeighborhoodGenerator{}, weight: 0.3},
			{gen: StructuralGenerator{}, weight: 0.2},
		}
	}
	return c, nil
}

func (c *Cache) Dimension() int { return c.dim }

// Get returns the cached vector for (s, ctx), computing it on a miss. The
// returned slice is shared with the cache and must not be modified.
func (c *Cache) Get(s Subject, ctx Context) ([]float64, error) {
	key := Fingerprint(s, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits++
		return e.vector, nil
	}
	c.misses++

	vec, err := c.compute(s, ctx)
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{id: s.ID, vector: vec}
	c.index(s.ID, key)
	return vec, nil
}

func (c *Cache) compute(s Subject, ctx Context) ([]float64, error) {
	sum := make([]float64, c.dim)
	var total float64
	for _, wg := range c.generators {
		part, err := wg.gen.Generate(s, ctx, c.dim)
		if err != nil {
			if !errors.Is(err, ErrNoSignal) {
				log.Printf("Warning: %s embedding failed for %q: %v", wg.gen.Name(), s.ID, err)
			}
			continue
		}
		part = fit(part, c.dim)
		for i, x := range part {
			sum[i] += wg.weight * x
		}
		total += wg.weight
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoEmbedding, s.ID)
	}
	for i := range sum {
		sum[i] /= total
	}
	return sum, nil
}

func (c *Cache) index(id, key string) {
	keys, ok := c.byID[id]
	if !ok {
		keys = make(map[string]struct{})
		c.byID[id] = keys
	}
	keys[key] = struct{}{}
}

// Evict drops every entry computed for id. It is wired to graph removals.
func (c *Cache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.byID[id] {
		delete(c.entries, key)
	}
	delete(c.byID, id)
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.byID = make(map[string]map[string]struct{})
	c.hits, c.misses = 0, 0
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
