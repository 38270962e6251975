package bridge

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/langbridge/internal/engine"
	"github.com/dshills/langbridge/internal/logging"
)

// ProjectContext owns the engine instance for one project configuration
// and tracks which documents are attached to it. The engine cannot be
// reconfigured in place when a document's structural kind changes, so a
// kind change disposes the instance and builds a replacement.
type ProjectContext struct {
	mu         sync.RWMutex
	configPath string
	options    engine.Options
	fileNames  []string
	view       *fileView
	docs       map[string]Kind // attached path -> kind at last attach
	eng        engine.Engine
	generation int
	logger     *log.Logger
}

// EngineHandle is a generation-tagged reference to a live engine
// instance. Replacement increments the project's generation; a holder of
// an old handle can detect that with Stale instead of racing against the
// replacement.
type EngineHandle struct {
	// Generation identifies the engine instance this handle refers to.
	Generation int

	// ConfigPath identifies the project, "" for the default project.
	ConfigPath string

	eng     engine.Engine
	project *ProjectContext
}

// Engine returns the engine instance behind the handle.
func (h *EngineHandle) Engine() engine.Engine {
	return h.eng
}

// Stale reports whether the project has replaced its engine since this
// handle was obtained.
func (h *EngineHandle) Stale() bool {
	h.project.mu.RLock()
	defer h.project.mu.RUnlock()
	return h.Generation != h.project.generation
}

// Checked returns the engine behind the handle, or ErrStaleHandle when
// the project replaced its engine after the handle was obtained.
func (h *EngineHandle) Checked() (engine.Engine, error) {
	if h.Stale() {
		return nil, ErrStaleHandle
	}
	return h.eng, nil
}

func newProjectContext(configPath string, options engine.Options, fileNames []string, cache *SnapshotCache, logger *log.Logger) *ProjectContext {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProjectContext{
		configPath: configPath,
		options:    options,
		fileNames:  fileNames,
		view:       newFileView(cache, fileNames),
		docs:       make(map[string]Kind),
		logger:     logger,
	}
}

// attach records a document's snapshot in the context, extends the
// virtual file view, and returns a handle for the context's engine,
// replacing the engine first when the document's structural kind changed
// since its previous attach. Replacement requires exclusive access: no
// query against the old instance may be in flight, which the context's
// write lock guarantees for callers that go through the registry.
func (pc *ProjectContext) attach(snap *Snapshot, factory engine.Factory) (*EngineHandle, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	prevKind, wasAttached := pc.docs[snap.Path]
	pc.docs[snap.Path] = snap.Kind
	pc.view.addGenerated(snap.GeneratedName())

	switch {
	case pc.eng == nil:
		eng, err := factory(pc.options, pc.view)
		if err != nil {
			return nil, &ProjectError{ConfigPath: pc.configPath, Err: fmt.Errorf("create engine: %w", err)}
		}
		pc.eng = eng

	case wasAttached && prevKind != snap.Kind:
		pc.logger.Info("structural kind changed, replacing engine",
			logging.FieldPath, snap.Path,
			logging.FieldKind, snap.Kind,
			logging.FieldConfig, pc.configPath)
		// The generation advances with the dispose, not the rebuild:
		// handles to the disposed instance must read as stale even
		// when constructing the replacement fails.
		pc.eng.Dispose()
		pc.eng = nil
		pc.generation++
		eng, err := factory(pc.options, pc.view)
		if err != nil {
			return nil, &ProjectError{ConfigPath: pc.configPath, Err: fmt.Errorf("replace engine: %w", err)}
		}
		pc.eng = eng
	}

	return &EngineHandle{
		Generation: pc.generation,
		ConfigPath: pc.configPath,
		eng:        pc.eng,
		project:    pc,
	}, nil
}

// handle returns a handle for the current engine instance, or false
// when no engine has been built yet.
func (pc *ProjectContext) handle() (*EngineHandle, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.eng == nil {
		return nil, false
	}
	return &EngineHandle{
		Generation: pc.generation,
		ConfigPath: pc.configPath,
		eng:        pc.eng,
		project:    pc,
	}, true
}

// attached reports whether a document is attached to this project.
func (pc *ProjectContext) attached(path string) bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	_, ok := pc.docs[path]
	return ok
}

// Options returns the project's resolved engine options.
func (pc *ProjectContext) Options() engine.Options {
	return pc.options
}

// AttachedPaths returns the paths of documents attached to this project.
func (pc *ProjectContext) AttachedPaths() []string {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	paths := make([]string, 0, len(pc.docs))
	for path := range pc.docs {
		paths = append(paths, path)
	}
	return paths
}
