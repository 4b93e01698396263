package embedding

import (
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/kgrefine/internal/core/common"
)

var ErrDimensionMismatch = errors.New("embedding: snapshot dimension mismatch")

type snapshot struct {
	Dimension int                      `json:"dimension"`
	Timestamp time.Time                `json:"timestamp"`
	Entries   map[string]snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	ID     string    `json:"id"`
	Vector []float64 `json:"vector"`
}

// Save writes the cache to path as JSON.
func (c *Cache) Save(path string) error {
	c.mu.Lock()
	snap := snapshot{
		Dimension: c.dim,
		Timestamp: time.Now().UTC(),
		Entries:   make(map[string]snapshotEntry, len(c.entries)),
	}
	for key, e := range c.entries {
		snap.Entries[key] = snapshotEntry{ID: e.id, Vector: e.vector}
	}
	c.mu.Unlock()

	if err := common.WriteJSON(path, snap); err != nil {
		return fmt.Errorf("failed to save embedding cache: %w", err)
	}
	return nil
}

// Load merges a snapshot written by Save into the cache. Entries of the
// wrong length are skipped; a snapshot of another dimension is rejected.
func (c *Cache) Load(path string) (int, error) {
	snap, err := common.ReadJSON[snapshot](path)
	if err != nil {
		return 0, fmt.Errorf("failed to load embedding cache: %w", err)
	}
	if snap.Dimension != c.dim {
		return 0, fmt.Errorf("%w: file has %d, cache has %d", ErrDimensionMismatch, snap.Dimension, c.dim)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	loaded := 0
	for key, e := range snap.Entries {
		if len(e.Vector) != c.dim {
			continue
		}
		c.entries[key] = cacheEntry{id: e.ID, vector: e.Vector}
		c.index(e.ID, key)
		loaded++
	}
	return loaded, nil
}
