package bridge

import (
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/langbridge/internal/engine"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/projconfig"
)

// ConfigLoader resolves a document's project identity. The default
// implementation delegates to the projconfig package; tests substitute
// their own.
type ConfigLoader interface {
	// FindConfig searches dir and its ancestors for a config file and
	// returns its path, or "" when none exists.
	FindConfig(dir string) string

	// ParseConfig reads and resolves a config file.
	ParseConfig(path string) (projconfig.ProjectConfig, error)
}

// defaultConfigLoader delegates to projconfig.
type defaultConfigLoader struct{}

func (defaultConfigLoader) FindConfig(dir string) string {
	return projconfig.FindConfig(dir)
}

func (defaultConfigLoader) ParseConfig(path string) (projconfig.ProjectConfig, error) {
	return projconfig.ParseConfig(path)
}

// Registry maintains exactly one ProjectContext per distinct config
// path, and through it exactly one live engine instance per project.
// Contexts live for the registry's lifetime; eviction is deliberately
// not supported.
type Registry struct {
	mu       sync.RWMutex
	cache    *SnapshotCache
	loader   ConfigLoader
	factory  engine.Factory
	contexts map[string]*ProjectContext
	logger   *log.Logger
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithConfigLoader substitutes the project configuration loader.
func WithConfigLoader(loader ConfigLoader) RegistryOption {
	return func(r *Registry) {
		r.loader = loader
	}
}

// WithRegistryLogger sets the registry's logger.
func WithRegistryLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry over the given snapshot cache and
// engine factory.
func NewRegistry(cache *SnapshotCache, factory engine.Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		cache:    cache,
		loader:   defaultConfigLoader{},
		factory:  factory,
		contexts: make(map[string]*ProjectContext),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetEngine resolves the document's project, updates its snapshot,
// attaches it, and returns a handle for the project's engine. The
// snapshot update always happens, so calling GetEngine is also how
// document changes reach the engine.
func (r *Registry) GetEngine(doc Document) (*EngineHandle, error) {
	if r.factory == nil {
		return nil, ErrNoFactory
	}

	configPath := r.loader.FindConfig(filepath.Dir(doc.Path))
	pc := r.contextFor(configPath)
	snap := r.cache.Update(doc)
	return pc.attach(snap, r.factory)
}

// contextFor returns the ProjectContext for a config path, creating it
// on first use. Config parse failure degrades to default options with an
// empty declared file list; the registry always produces a usable, if
// degraded, context.
func (r *Registry) contextFor(configPath string) *ProjectContext {
	r.mu.RLock()
	pc, ok := r.contexts[configPath]
	r.mu.RUnlock()
	if ok {
		return pc
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if pc, ok = r.contexts[configPath]; ok {
		return pc
	}

	cfg := projconfig.Default()
	if configPath != "" {
		parsed, err := r.loader.ParseConfig(configPath)
		if err != nil {
			r.logger.Warn("config parse failed, using default options",
				logging.FieldConfig, configPath,
				logging.FieldError, err)
		} else {
			cfg = parsed
		}
	}

	pc = newProjectContext(configPath, cfg.Options, cfg.FileNames, r.cache, r.logger)
	r.contexts[configPath] = pc
	return pc
}

// EngineFor returns a handle for the engine of the project a document
// is already attached to, without refreshing the document's snapshot.
// ok is false when the document was never attached.
func (r *Registry) EngineFor(path string) (*EngineHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pc := range r.contexts {
		if pc.attached(path) {
			return pc.handle()
		}
	}
	return nil, false
}

// Project returns the existing context for a config path, if any.
func (r *Registry) Project(configPath string) (*ProjectContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.contexts[configPath]
	return pc, ok
}

// ProjectCount returns the number of live project contexts.
func (r *Registry) ProjectCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}
