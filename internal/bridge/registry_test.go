package bridge

import (
	"errors"
	"testing"

	"github.com/dshills/langbridge/internal/engine/enginetest"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/projconfig"
)

func newTestRegistry(conv Converter, loader ConfigLoader) (*Registry, *enginetest.Factory, *SnapshotCache) {
	cache := NewSnapshotCache(conv, logging.Discard())
	factory := &enginetest.Factory{}
	reg := NewRegistry(cache, factory.New,
		WithConfigLoader(loader),
		WithRegistryLogger(logging.Discard()))
	return reg, factory, cache
}

func TestRegistry_NoFactory(t *testing.T) {
	cache := NewSnapshotCache(newScriptedConverter(), logging.Discard())
	reg := NewRegistry(cache, nil, WithRegistryLogger(logging.Discard()))

	_, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "x"})
	if !errors.Is(err, ErrNoFactory) {
		t.Errorf("GetEngine() error = %v, want ErrNoFactory", err)
	}
}

func TestRegistry_OneEnginePerProject(t *testing.T) {
	loader := newStubLoader()
	loader.byDir["/p"] = "/p/langbridge.json"
	reg, factory, _ := newTestRegistry(newScriptedConverter(), loader)

	h1, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "a"})
	if err != nil {
		t.Fatalf("GetEngine(a) error = %v", err)
	}
	h2, err := reg.GetEngine(Document{Path: "/p/b.lbx", Version: 1, Text: "b"})
	if err != nil {
		t.Fatalf("GetEngine(b) error = %v", err)
	}

	if h1.Engine() != h2.Engine() {
		t.Error("documents in the same project got different engine instances")
	}
	if h1.ConfigPath != "/p/langbridge.json" {
		t.Errorf("ConfigPath = %q, want %q", h1.ConfigPath, "/p/langbridge.json")
	}
	if n := len(factory.Created()); n != 1 {
		t.Errorf("factory created %d engines, want 1", n)
	}
	if n := reg.ProjectCount(); n != 1 {
		t.Errorf("ProjectCount() = %d, want 1", n)
	}

	pc, ok := reg.Project("/p/langbridge.json")
	if !ok {
		t.Fatal("Project() missed an existing context")
	}
	if n := len(pc.AttachedPaths()); n != 2 {
		t.Errorf("AttachedPaths() has %d entries, want 2", n)
	}
}

func TestRegistry_DistinctProjects(t *testing.T) {
	loader := newStubLoader()
	loader.byDir["/one"] = "/one/langbridge.json"
	// /two has no config file and lands in the default project.
	reg, factory, _ := newTestRegistry(newScriptedConverter(), loader)

	h1, err := reg.GetEngine(Document{Path: "/one/a.lbx", Version: 1, Text: "a"})
	if err != nil {
		t.Fatalf("GetEngine(one) error = %v", err)
	}
	h2, err := reg.GetEngine(Document{Path: "/two/b.lbx", Version: 1, Text: "b"})
	if err != nil {
		t.Fatalf("GetEngine(two) error = %v", err)
	}

	if h1.Engine() == h2.Engine() {
		t.Error("distinct projects shared an engine instance")
	}
	if h2.ConfigPath != "" {
		t.Errorf("default project ConfigPath = %q, want empty", h2.ConfigPath)
	}
	if n := len(factory.Created()); n != 2 {
		t.Errorf("factory created %d engines, want 2", n)
	}
	if n := reg.ProjectCount(); n != 2 {
		t.Errorf("ProjectCount() = %d, want 2", n)
	}
}

func TestRegistry_SameKindKeepsEngine(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "v1", Kind: KindScriptOnly}
	reg, factory, _ := newTestRegistry(conv, newStubLoader())

	h1, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "v1"})
	if err != nil {
		t.Fatalf("GetEngine(v1) error = %v", err)
	}

	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "v2", Kind: KindScriptOnly}
	h2, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 2, Text: "v2"})
	if err != nil {
		t.Fatalf("GetEngine(v2) error = %v", err)
	}

	if h1.Engine() != h2.Engine() {
		t.Error("engine replaced although the structural kind did not change")
	}
	if h1.Stale() {
		t.Error("handle became stale without a replacement")
	}
	if n := len(factory.Created()); n != 1 {
		t.Errorf("factory created %d engines, want 1", n)
	}
}

func TestRegistry_KindChangeReplacesEngine(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "script", Kind: KindScriptOnly}
	reg, factory, _ := newTestRegistry(conv, newStubLoader())

	h1, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "script"})
	if err != nil {
		t.Fatalf("GetEngine(v1) error = %v", err)
	}

	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "markup", Kind: KindMarkupScript}
	h2, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 2, Text: "markup"})
	if err != nil {
		t.Fatalf("GetEngine(v2) error = %v", err)
	}

	if h1.Engine() == h2.Engine() {
		t.Error("engine not replaced on structural kind change")
	}
	if h2.Generation != h1.Generation+1 {
		t.Errorf("Generation = %d, want %d", h2.Generation, h1.Generation+1)
	}
	if !h1.Stale() {
		t.Error("old handle not reported stale after replacement")
	}
	if h2.Stale() {
		t.Error("fresh handle reported stale")
	}

	created := factory.Created()
	if len(created) != 2 {
		t.Fatalf("factory created %d engines, want 2", len(created))
	}
	if !created[0].Disposed() {
		t.Error("replaced engine was not disposed")
	}
	if created[1].Disposed() {
		t.Error("live engine was disposed")
	}
}

func TestRegistry_FailedReplacementStalesOldHandles(t *testing.T) {
	conv := newScriptedConverter()
	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "script", Kind: KindScriptOnly}
	reg, factory, _ := newTestRegistry(conv, newStubLoader())

	h1, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "script"})
	if err != nil {
		t.Fatalf("GetEngine(v1) error = %v", err)
	}

	// The kind change disposes the engine, then the replacement fails.
	conv.results["/p/a.lbx"] = ConvertResult{GeneratedText: "markup", Kind: KindMarkupScript}
	factory.CreateErr = errors.New("spawn failed")
	if _, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 2, Text: "markup"}); err == nil {
		t.Fatal("GetEngine(v2) succeeded, want replacement failure")
	}

	if !factory.Created()[0].Disposed() {
		t.Fatal("old engine not disposed on kind change")
	}
	if !h1.Stale() {
		t.Error("handle to a disposed engine not reported stale")
	}
	if _, err := h1.Checked(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Checked() error = %v, want ErrStaleHandle", err)
	}

	// Recovery builds a fresh instance under a new generation.
	factory.CreateErr = nil
	h2, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 3, Text: "markup"})
	if err != nil {
		t.Fatalf("GetEngine(v3) error = %v", err)
	}
	if h2.Generation == h1.Generation {
		t.Errorf("generation %d reused across distinct engine instances", h2.Generation)
	}
	if h1.Engine() == h2.Engine() {
		t.Error("recovered engine is the disposed instance")
	}
	if h2.Stale() {
		t.Error("fresh handle reported stale")
	}
}

func TestRegistry_ConfigParseFailureDegrades(t *testing.T) {
	loader := newStubLoader()
	loader.byDir["/p"] = "/p/langbridge.json"
	loader.parseErr["/p/langbridge.json"] = errors.New("corrupt")
	reg, factory, _ := newTestRegistry(newScriptedConverter(), loader)

	h, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "a"})
	if err != nil {
		t.Fatalf("GetEngine() error = %v, want degraded success", err)
	}
	if h.Engine() == nil {
		t.Fatal("degraded project has no engine")
	}

	// The engine still gets the forced options.
	opts := factory.Created()[0].Options
	want := projconfig.Default().Options
	if !opts.NoEmit || opts.Declaration || !opts.PreserveMarkup || !opts.SkipLibCheck {
		t.Errorf("degraded options = %+v, want forced set %+v", opts, want)
	}
}

func TestRegistry_ConverterFailureStillYieldsHandle(t *testing.T) {
	conv := newScriptedConverter()
	conv.errs["/p/a.lbx"] = errors.New("parse exploded")
	reg, _, cache := newTestRegistry(conv, newStubLoader())

	h, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "bad"})
	if err != nil {
		t.Fatalf("GetEngine() error = %v, want success with empty snapshot", err)
	}
	if h.Engine() == nil {
		t.Fatal("no engine behind the handle")
	}

	snap, ok := cache.Get("/p/a.lbx")
	if !ok {
		t.Fatal("failed document not tracked")
	}
	if snap.GeneratedText != "" {
		t.Errorf("GeneratedText = %q, want empty", snap.GeneratedText)
	}
}

func TestRegistry_FactoryFailure(t *testing.T) {
	loader := newStubLoader()
	loader.byDir["/p"] = "/p/langbridge.json"
	cache := NewSnapshotCache(newScriptedConverter(), logging.Discard())
	factory := &enginetest.Factory{CreateErr: errors.New("spawn failed")}
	reg := NewRegistry(cache, factory.New,
		WithConfigLoader(loader),
		WithRegistryLogger(logging.Discard()))

	_, err := reg.GetEngine(Document{Path: "/p/a.lbx", Version: 1, Text: "a"})
	if err == nil {
		t.Fatal("GetEngine() succeeded, want error")
	}
	var perr *ProjectError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ProjectError", err)
	}
	if perr.ConfigPath != "/p/langbridge.json" {
		t.Errorf("ProjectError.ConfigPath = %q, want %q", perr.ConfigPath, "/p/langbridge.json")
	}
}
