package bridge

import (
	"errors"
	"testing"

	"github.com/dshills/langbridge/internal/logging"
)

func TestSnapshotCache_UpdateStoresSnapshot(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{
		GeneratedText: "let x = 1;",
		MapJSON:       mapArtifact(1, 1, 1, 1),
		Kind:          KindScriptOnly,
	}
	cache := NewSnapshotCache(conv, logging.Discard())

	snap := cache.Update(Document{Path: "/p/a.lbx", Version: 3, Text: "src"})

	if snap.SourceVersion != 3 {
		t.Errorf("SourceVersion = %d, want 3", snap.SourceVersion)
	}
	if snap.SourceText != "src" {
		t.Errorf("SourceText = %q, want %q", snap.SourceText, "src")
	}
	if snap.GeneratedText != "let x = 1;" {
		t.Errorf("GeneratedText = %q", snap.GeneratedText)
	}
	if snap.GeneratedLength != len("let x = 1;") {
		t.Errorf("GeneratedLength = %d, want %d", snap.GeneratedLength, len("let x = 1;"))
	}
	if !snap.HasMap() {
		t.Error("HasMap() = false, want true")
	}
	if snap.Kind != KindScriptOnly {
		t.Errorf("Kind = %v, want %v", snap.Kind, KindScriptOnly)
	}

	got, ok := cache.Get("/p/a.lbx")
	if !ok {
		t.Fatal("Get() missed after Update()")
	}
	if got != snap {
		t.Error("Get() returned a different snapshot than Update()")
	}
}

func TestSnapshotCache_LastWriteWins(t *testing.T) {
	conv := newScriptedConverter()
	cache := NewSnapshotCache(conv, logging.Discard())

	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "one"})
	cache.Update(Document{Path: "/p/a.lbx", Version: 2, Text: "two"})

	snap, ok := cache.Get("/p/a.lbx")
	if !ok {
		t.Fatal("Get() missed")
	}
	if snap.SourceVersion != 2 {
		t.Errorf("SourceVersion = %d, want 2", snap.SourceVersion)
	}
	if snap.GeneratedText != "two" {
		t.Errorf("GeneratedText = %q, want %q", snap.GeneratedText, "two")
	}
	if n := len(cache.Paths()); n != 1 {
		t.Errorf("Paths() has %d entries, want 1", n)
	}
}

func TestSnapshotCache_ConverterFailureDegrades(t *testing.T) {
	conv := newScriptedConverter()
	conv.errs["/p/bad.lbx"] = errors.New("boom")
	cache := NewSnapshotCache(conv, logging.Discard())

	snap := cache.Update(Document{Path: "/p/bad.lbx", Version: 1, Text: "src"})

	if snap.GeneratedText != "" {
		t.Errorf("GeneratedText = %q, want empty", snap.GeneratedText)
	}
	if snap.HasMap() {
		t.Error("HasMap() = true, want false")
	}
	if snap.Kind != KindUnknown {
		t.Errorf("Kind = %v, want %v", snap.Kind, KindUnknown)
	}
	// The failed document stays tracked so later queries see an empty
	// representation instead of a miss.
	if _, ok := cache.Get("/p/bad.lbx"); !ok {
		t.Error("Get() missed, want degraded snapshot")
	}
}

func TestSnapshotCache_GetGenerated(t *testing.T) {
	conv := newScriptedConverter()
	cache := NewSnapshotCache(conv, logging.Discard())
	cache.Update(Document{Path: "/p/a.lbx", Version: 1, Text: "x"})

	snap, ok := cache.GetGenerated("/p/a.lbx" + GeneratedSuffix)
	if !ok {
		t.Fatal("GetGenerated() missed for a tracked document")
	}
	if snap.Path != "/p/a.lbx" {
		t.Errorf("Path = %q, want %q", snap.Path, "/p/a.lbx")
	}

	if _, ok := cache.GetGenerated("/p/a.lbx"); ok {
		t.Error("GetGenerated() matched a name without the generated suffix")
	}
	if _, ok := cache.GetGenerated("/p/other.lbx" + GeneratedSuffix); ok {
		t.Error("GetGenerated() matched an untracked document")
	}
}

func TestGeneratedName_RoundTrip(t *testing.T) {
	name := GeneratedName("/p/a.lbx")
	path, ok := OriginalName(name)
	if !ok {
		t.Fatalf("OriginalName(%q) not recognized", name)
	}
	if path != "/p/a.lbx" {
		t.Errorf("OriginalName(%q) = %q, want %q", name, path, "/p/a.lbx")
	}

	if _, ok := OriginalName(GeneratedSuffix); ok {
		t.Error("OriginalName accepted a bare suffix")
	}
	if _, ok := OriginalName("/p/a.ts"); ok {
		t.Error("OriginalName accepted a non-generated name")
	}
}
