package bridge

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/sourcemap"
)

// Mapper converts offsets between a document's original text and its
// generated representation. When no mapping data is available the input
// offset is returned unchanged (identity fallback); when the map has no
// entry for a position, the position obtained from line/column
// conversion alone is used. Mapping never fails.
//
// Parsed map artifacts are expensive to rebuild, so they are cached per
// document and rebuilt only when the document version advances.
// Concurrent builds for the same document version are collapsed through
// singleflight.
type Mapper struct {
	cache  *SnapshotCache
	logger *log.Logger

	mu      sync.RWMutex
	entries map[string]*mapEntry
	group   singleflight.Group
}

// mapEntry is the parsed mapping state for one document version.
type mapEntry struct {
	sourceVersion int
	m             *sourcemap.Map // nil when the artifact is absent or invalid
	origLines     *lineTable
	genLines      *lineTable
}

// NewMapper creates a mapper over the given snapshot cache.
func NewMapper(cache *SnapshotCache, logger *log.Logger) *Mapper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mapper{
		cache:   cache,
		logger:  logger,
		entries: make(map[string]*mapEntry),
	}
}

// Prepare builds the parsed mapping state for a document's current
// snapshot. Callers that want the two-phase protocol (request, then
// await readiness before translating) call Prepare once per update;
// ToGenerated and ToOriginal also build lazily on first use.
func (m *Mapper) Prepare(path string) {
	if snap, ok := m.cache.Get(path); ok {
		m.entryFor(snap)
	}
}

// ToGenerated converts a 0-based offset in the original document to the
// corresponding offset in the generated representation.
func (m *Mapper) ToGenerated(path string, origOffset int) int {
	snap, ok := m.cache.Get(path)
	if !ok || !snap.HasMap() {
		return origOffset
	}
	e := m.entryFor(snap)
	if e.m == nil {
		return origOffset
	}

	line, col := e.origLines.position(origOffset)
	genLine, genCol, found := e.m.ToGenerated(line, col)
	if !found {
		// No correspondence on this line; keep the unmapped position.
		return e.genLines.offset(line, col)
	}
	return e.genLines.offset(genLine, genCol)
}

// ToOriginal converts a 0-based offset in a generated file to the
// corresponding offset in its original document.
func (m *Mapper) ToOriginal(genName string, genOffset int) int {
	snap, ok := m.cache.GetGenerated(genName)
	if !ok || !snap.HasMap() {
		return genOffset
	}
	e := m.entryFor(snap)
	if e.m == nil {
		return genOffset
	}

	line, col := e.genLines.position(genOffset)
	origLine, origCol, found := e.m.ToOriginal(line, col)
	if !found {
		return e.origLines.offset(line, col)
	}
	return e.origLines.offset(origLine, origCol)
}

// OriginalLength returns the original text length for a generated file
// name, used by translators to bound results. ok is false when the file
// has no tracked snapshot.
func (m *Mapper) OriginalLength(genName string) (int, bool) {
	snap, ok := m.cache.GetGenerated(genName)
	if !ok {
		return 0, false
	}
	return len(snap.SourceText), true
}

// entryFor returns the parsed mapping state for a snapshot, building it
// when missing or derived from an older document version.
func (m *Mapper) entryFor(snap *Snapshot) *mapEntry {
	m.mu.RLock()
	e, ok := m.entries[snap.Path]
	m.mu.RUnlock()
	if ok && e.sourceVersion == snap.SourceVersion {
		return e
	}

	key := fmt.Sprintf("%s@%d", snap.Path, snap.SourceVersion)
	v, _, _ := m.group.Do(key, func() (any, error) {
		// Recheck under the write path; another caller may have built
		// this version while we waited.
		m.mu.RLock()
		e, ok := m.entries[snap.Path]
		m.mu.RUnlock()
		if ok && e.sourceVersion == snap.SourceVersion {
			return e, nil
		}

		e = &mapEntry{
			sourceVersion: snap.SourceVersion,
			origLines:     newLineTable(snap.SourceText),
			genLines:      newLineTable(snap.GeneratedText),
		}
		if snap.HasMap() {
			parsed, err := sourcemap.Parse(snap.MapJSON)
			if err != nil {
				m.logger.Warn("position map unusable, falling back to identity",
					logging.FieldPath, snap.Path,
					logging.FieldVersion, snap.SourceVersion,
					logging.FieldError, err)
			} else {
				e.m = parsed
			}
		}

		m.mu.Lock()
		m.entries[snap.Path] = e
		m.mu.Unlock()
		return e, nil
	})
	return v.(*mapEntry)
}
