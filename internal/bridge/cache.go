package bridge

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/langbridge/internal/logging"
)

// SnapshotCache holds the latest generated snapshot per document path.
// Update always reconverts: the converter is assumed cheap relative to
// the correctness risk of serving a stale generated representation.
// Converter failure degrades to an empty snapshot and is logged, never
// surfaced to the caller; downstream engine queries then return empty
// results instead of failing.
type SnapshotCache struct {
	mu        sync.RWMutex
	converter Converter
	snapshots map[string]*Snapshot
	logger    *log.Logger
}

// NewSnapshotCache creates a cache backed by the given converter.
func NewSnapshotCache(converter Converter, logger *log.Logger) *SnapshotCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotCache{
		converter: converter,
		snapshots: make(map[string]*Snapshot),
		logger:    logger,
	}
}

// Update reconverts the document and replaces its stored snapshot
// unconditionally (last-write-wins).
func (c *SnapshotCache) Update(doc Document) *Snapshot {
	snap := &Snapshot{
		Path:          doc.Path,
		SourceVersion: doc.Version,
		SourceText:    doc.Text,
	}

	result, err := c.converter.Convert(doc.Text, doc.Path)
	if err != nil {
		c.logger.Warn("conversion failed, serving empty representation",
			logging.FieldPath, doc.Path,
			logging.FieldVersion, doc.Version,
			logging.FieldError, err)
	} else {
		snap.GeneratedText = result.GeneratedText
		snap.GeneratedLength = len(result.GeneratedText)
		snap.Kind = result.Kind
		snap.MapJSON = result.MapJSON
	}

	c.mu.Lock()
	c.snapshots[doc.Path] = snap
	c.mu.Unlock()

	return snap
}

// Get returns the stored snapshot for a document path. It is a pure
// lookup with no recomputation; the engine's virtual file system
// callbacks rely on that.
func (c *SnapshotCache) Get(path string) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[path]
	return snap, ok
}

// GetGenerated returns the snapshot whose generated name matches, or
// false when the name is not a generated name or has no snapshot.
func (c *SnapshotCache) GetGenerated(genName string) (*Snapshot, bool) {
	path, ok := OriginalName(genName)
	if !ok {
		return nil, false
	}
	return c.Get(path)
}

// Paths returns the document paths with a stored snapshot.
func (c *SnapshotCache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.snapshots))
	for path := range c.snapshots {
		paths = append(paths, path)
	}
	return paths
}
