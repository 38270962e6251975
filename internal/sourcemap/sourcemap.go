// Package sourcemap decodes the position-map artifact produced by a
// converter and answers nearest-entry lookups in both directions.
//
// The artifact is a JSON object:
//
//	{
//	  "version": 1,
//	  "mappings": [
//	    {"origLine": 1, "origCol": 1, "genLine": 1, "genCol": 1},
//	    ...
//	  ]
//	}
//
// All lines and columns inside the artifact are 1-based. Callers are
// responsible for converting to and from 0-based byte offsets.
package sourcemap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// ErrInvalidArtifact indicates the artifact JSON is malformed or has an
// unsupported version.
var ErrInvalidArtifact = errors.New("invalid position map artifact")

// Version is the artifact format version this package understands.
const Version = 1

// Entry correlates one position in the original document with one
// position in the generated representation.
type Entry struct {
	OrigLine int
	OrigCol  int
	GenLine  int
	GenCol   int
}

// Map is a decoded position-map artifact. It keeps the entries sorted
// for lookup on both the original and the generated side.
type Map struct {
	byOrig []Entry // sorted by (OrigLine, OrigCol)
	byGen  []Entry // sorted by (GenLine, GenCol)
}

// Parse decodes an artifact. An empty mappings array is valid and yields
// a map for which every lookup misses.
func Parse(data string) (*Map, error) {
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidArtifact)
	}

	version := gjson.Get(data, "version")
	if !version.Exists() || version.Int() != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidArtifact, version.Raw)
	}

	mappings := gjson.Get(data, "mappings")
	if mappings.Exists() && !mappings.IsArray() {
		return nil, fmt.Errorf("%w: mappings is not an array", ErrInvalidArtifact)
	}

	var entries []Entry
	var bad error
	mappings.ForEach(func(_, value gjson.Result) bool {
		e := Entry{
			OrigLine: int(value.Get("origLine").Int()),
			OrigCol:  int(value.Get("origCol").Int()),
			GenLine:  int(value.Get("genLine").Int()),
			GenCol:   int(value.Get("genCol").Int()),
		}
		if e.OrigLine < 1 || e.OrigCol < 1 || e.GenLine < 1 || e.GenCol < 1 {
			bad = fmt.Errorf("%w: mapping with non-positive position %+v", ErrInvalidArtifact, e)
			return false
		}
		entries = append(entries, e)
		return true
	})
	if bad != nil {
		return nil, bad
	}

	m := &Map{
		byOrig: make([]Entry, len(entries)),
		byGen:  make([]Entry, len(entries)),
	}
	copy(m.byOrig, entries)
	copy(m.byGen, entries)
	sort.SliceStable(m.byOrig, func(i, j int) bool {
		a, b := m.byOrig[i], m.byOrig[j]
		if a.OrigLine != b.OrigLine {
			return a.OrigLine < b.OrigLine
		}
		return a.OrigCol < b.OrigCol
	})
	sort.SliceStable(m.byGen, func(i, j int) bool {
		a, b := m.byGen[i], m.byGen[j]
		if a.GenLine != b.GenLine {
			return a.GenLine < b.GenLine
		}
		return a.GenCol < b.GenCol
	})
	return m, nil
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.byOrig)
}

// ToGenerated maps a 1-based original (line, col) to the generated side.
// It finds the nearest entry on the same original line at or before col
// and applies the intra-line column delta. ok is false when no entry
// exists on that line; callers fall back to the unmapped position.
func (m *Map) ToGenerated(line, col int) (genLine, genCol int, ok bool) {
	e, ok := nearest(m.byOrig, line, col, func(e Entry) (int, int) {
		return e.OrigLine, e.OrigCol
	})
	if !ok {
		return 0, 0, false
	}
	return e.GenLine, e.GenCol + (col - e.OrigCol), true
}

// ToOriginal maps a 1-based generated (line, col) to the original side.
// Lookup semantics mirror ToGenerated.
func (m *Map) ToOriginal(line, col int) (origLine, origCol int, ok bool) {
	e, ok := nearest(m.byGen, line, col, func(e Entry) (int, int) {
		return e.GenLine, e.GenCol
	})
	if !ok {
		return 0, 0, false
	}
	return e.OrigLine, e.OrigCol + (col - e.GenCol), true
}

// nearest returns the last entry on the query line with column <= col.
// Entries must be sorted by the key function.
func nearest(entries []Entry, line, col int, key func(Entry) (int, int)) (Entry, bool) {
	// First entry at or after (line, col+1); the candidate precedes it.
	i := sort.Search(len(entries), func(i int) bool {
		l, c := key(entries[i])
		if l != line {
			return l > line
		}
		return c > col
	})
	if i == 0 {
		return Entry{}, false
	}
	e := entries[i-1]
	if l, _ := key(e); l != line {
		return Entry{}, false
	}
	return e, true
}
