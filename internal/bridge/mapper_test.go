package bridge

import (
	"sync"
	"testing"

	"github.com/dshills/langbridge/internal/logging"
)

func TestMapper_IdentityWithoutSnapshot(t *testing.T) {
	cache := NewSnapshotCache(newScriptedConverter(), logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	if got := mapper.ToGenerated("/p/missing.lbx", 17); got != 17 {
		t.Errorf("ToGenerated() = %d, want identity 17", got)
	}
	if got := mapper.ToOriginal(GeneratedName("/p/missing.lbx"), 17); got != 17 {
		t.Errorf("ToOriginal() = %d, want identity 17", got)
	}
}

func TestMapper_IdentityWithoutMap(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "plain", Kind: KindScriptOnly}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "plain"})
	mapper.Prepare("/p/a.lbx")

	if got := mapper.ToGenerated("/p/a.lbx", 3); got != 3 {
		t.Errorf("ToGenerated() = %d, want identity 3", got)
	}
}

func TestMapper_IdentityWhenMapInvalid(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "text",
		MapJSON:       "{not json",
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "text"})
	mapper.Prepare("/p/a.lbx")

	if got := mapper.ToGenerated("/p/a.lbx", 2); got != 2 {
		t.Errorf("ToGenerated() = %d, want identity 2", got)
	}
	if got := mapper.ToOriginal(GeneratedName("/p/a.lbx"), 2); got != 2 {
		t.Errorf("ToOriginal() = %d, want identity 2", got)
	}
}

// A declaration that gains a type annotation in the generated output:
// positions before the annotation map straight across, and results on
// the annotation map back to the declaration start plus the delta.
func TestMapper_AnnotatedDeclaration(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "let x: number = 1;",
		MapJSON:       mapArtifact(1, 1, 1, 1),
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "let x = 1"})
	mapper.Prepare("/p/a.lbx")

	if got := mapper.ToGenerated("/p/a.lbx", 4); got != 4 {
		t.Errorf("ToGenerated(4) = %d, want 4", got)
	}
	// An engine result at the start of the annotation.
	if got := mapper.ToOriginal(GeneratedName("/p/a.lbx"), 4); got != 4 {
		t.Errorf("ToOriginal(4) = %d, want 4", got)
	}
	if got := mapper.ToGenerated("/p/a.lbx", 0); got != 0 {
		t.Errorf("ToGenerated(0) = %d, want 0", got)
	}
}

func TestMapper_RebuildsOnVersionChange(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "let x = 1",
		MapJSON:       mapArtifact(1, 1, 1, 1),
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "let x = 1"})
	mapper.Prepare("/p/a.lbx")
	if got := mapper.ToGenerated("/p/a.lbx", 4); got != 4 {
		t.Fatalf("v1 ToGenerated(4) = %d, want 4", got)
	}

	// v2 prepends a header line in the generated output.
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "// header\nlet x = 1",
		MapJSON:       mapArtifact(1, 1, 2, 1),
		Kind:          KindScriptOnly,
	}
	cache.Update(Document{Path: "/p/a.lbx", Version: 2, Text: "let x = 1"})
	mapper.Prepare("/p/a.lbx")

	if got := mapper.ToGenerated("/p/a.lbx", 0); got != 10 {
		t.Errorf("v2 ToGenerated(0) = %d, want 10", got)
	}
	if got := mapper.ToOriginal(GeneratedName("/p/a.lbx"), 10); got != 0 {
		t.Errorf("v2 ToOriginal(10) = %d, want 0", got)
	}
}

func TestMapper_LineFallbackWhenNoEntryOnLine(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "longline\nbb\nc",
		MapJSON:       mapArtifact(2, 1, 2, 1),
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "a\nbb\nc"})
	mapper.Prepare("/p/a.lbx")

	// Line 3 has no map entry; the line/column position carries over
	// unchanged, which lands at a different offset than identity would.
	if got := mapper.ToGenerated("/p/a.lbx", 5); got != 12 {
		t.Errorf("ToGenerated(5) = %d, want 12", got)
	}
	// Line 2 maps through its entry.
	if got := mapper.ToGenerated("/p/a.lbx", 3); got != 10 {
		t.Errorf("ToGenerated(3) = %d, want 10", got)
	}
}

func TestMapper_OriginalLength(t *testing.T) {
	conv := newScriptedConverter()
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "12345"})

	length, ok := mapper.OriginalLength(GeneratedName("/p/a.lbx"))
	if !ok || length != 5 {
		t.Errorf("OriginalLength() = (%d, %v), want (5, true)", length, ok)
	}
	if _, ok := mapper.OriginalLength(GeneratedName("/p/other.lbx")); ok {
		t.Error("OriginalLength() matched an untracked document")
	}
}

func TestMapper_ConcurrentLookups(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "let x: number = 1;",
		MapJSON:       mapArtifact(1, 1, 1, 1),
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())
	mapper := NewMapper(cache, logging.Discard())
	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "let x = 1"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for off := 0; off < 9; off++ {
				if got := mapper.ToGenerated("/p/a.lbx", off); got != off {
					t.Errorf("ToGenerated(%d) = %d, want %d", off, got, off)
				}
			}
		}()
	}
	wg.Wait()
}
