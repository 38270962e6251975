package bridge

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/dshills/langbridge/internal/engine"
	"github.com/dshills/langbridge/internal/logging"
)

// Session is the explicit state holder for one bridge instance: the
// snapshot cache, the project registry, the position mapper, and the
// result translator. Its lifetime is tied to the hosting process; there
// is no ambient package-level state.
//
// Feature handlers issue two calls per request: UpdateDocument for a
// handle on the document's engine, then one Translator method on the
// engine's result.
type Session struct {
	cache      *SnapshotCache
	mapper     *Mapper
	registry   *Registry
	translator *Translator
	logger     *log.Logger
}

// SessionOption configures a session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	logger *log.Logger
	loader ConfigLoader
}

// WithLogger sets the logger used by all session components.
func WithLogger(logger *log.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithLoader substitutes the project configuration loader.
func WithLoader(loader ConfigLoader) SessionOption {
	return func(c *sessionConfig) {
		c.loader = loader
	}
}

// NewSession creates a session over the given converter and engine
// factory.
func NewSession(converter Converter, factory engine.Factory, opts ...SessionOption) *Session {
	cfg := sessionConfig{logger: logging.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache := NewSnapshotCache(converter, cfg.logger)
	mapper := NewMapper(cache, cfg.logger)

	regOpts := []RegistryOption{WithRegistryLogger(cfg.logger)}
	if cfg.loader != nil {
		regOpts = append(regOpts, WithConfigLoader(cfg.loader))
	}
	registry := NewRegistry(cache, factory, regOpts...)

	return &Session{
		cache:      cache,
		mapper:     mapper,
		registry:   registry,
		translator: NewTranslator(mapper, cache),
		logger:     cfg.logger,
	}
}

// UpdateDocument refreshes the document's snapshot, attaches it to its
// project, and returns a handle on the project's engine. The position
// map for the new snapshot is prepared before returning, so translation
// requests for this version never observe a half-built map.
func (s *Session) UpdateDocument(doc Document) (*EngineHandle, error) {
	handle, err := s.registry.GetEngine(doc)
	if err != nil {
		return nil, err
	}
	s.mapper.Prepare(doc.Path)
	return handle, nil
}

// Mapper returns the session's position mapper.
func (s *Session) Mapper() *Mapper {
	return s.mapper
}

// Translator returns the session's result translator.
func (s *Session) Translator() *Translator {
	return s.translator
}

// Cache returns the session's snapshot cache.
func (s *Session) Cache() *SnapshotCache {
	return s.cache
}

// Registry returns the session's engine registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// CheckDocument updates the document and returns its syntactic and
// semantic diagnostics in original coordinates. Engine query failures
// degrade to an empty list; they are logged, never retried.
func (s *Session) CheckDocument(ctx context.Context, doc Document) ([]engine.Diagnostic, error) {
	handle, err := s.UpdateDocument(doc)
	if err != nil {
		return nil, err
	}

	genName := GeneratedName(doc.Path)
	eng, err := handle.Checked()
	if err != nil {
		return nil, err
	}

	var diags []engine.Diagnostic
	syntactic, err := eng.Diagnostics(ctx, genName)
	if err != nil {
		s.logger.Debug("diagnostics query failed",
			logging.FieldPath, doc.Path, logging.FieldError, err)
	} else {
		diags = append(diags, syntactic...)
	}
	semantic, err := eng.SemanticIssues(ctx, genName)
	if err != nil {
		s.logger.Debug("semantic query failed",
			logging.FieldPath, doc.Path, logging.FieldError, err)
	} else {
		diags = append(diags, semantic...)
	}

	return s.translator.Diagnostics(diags, genName), nil
}

// QuickInfoAt updates the document and returns hover information at an
// original-document offset, or nil when the engine has none.
func (s *Session) QuickInfoAt(ctx context.Context, doc Document, origOffset int) (*engine.QuickInfo, error) {
	handle, err := s.UpdateDocument(doc)
	if err != nil {
		return nil, err
	}

	genName := GeneratedName(doc.Path)
	genOffset := s.mapper.ToGenerated(doc.Path, origOffset)

	eng, err := handle.Checked()
	if err != nil {
		return nil, err
	}

	info, err := eng.QuickInfo(ctx, genName, genOffset)
	if err != nil {
		s.logger.Debug("quick info query failed",
			logging.FieldPath, doc.Path, logging.FieldError, err)
		return nil, nil
	}
	return s.translator.QuickInfo(info, genName), nil
}

// CompletionsAt updates the document and returns completions at an
// original-document offset, or nil when the engine has none.
func (s *Session) CompletionsAt(ctx context.Context, doc Document, origOffset int) (*engine.CompletionList, error) {
	handle, err := s.UpdateDocument(doc)
	if err != nil {
		return nil, err
	}

	genName := GeneratedName(doc.Path)
	genOffset := s.mapper.ToGenerated(doc.Path, origOffset)

	eng, err := handle.Checked()
	if err != nil {
		return nil, err
	}

	list, err := eng.Completions(ctx, genName, genOffset)
	if err != nil {
		s.logger.Debug("completion query failed",
			logging.FieldPath, doc.Path, logging.FieldError, err)
		return nil, nil
	}
	return s.translator.Completions(list, genName), nil
}

// DefinitionsAt updates the document and returns definition locations
// for the symbol at an original-document offset.
func (s *Session) DefinitionsAt(ctx context.Context, doc Document, origOffset int) ([]engine.DefinitionInfo, error) {
	handle, err := s.UpdateDocument(doc)
	if err != nil {
		return nil, err
	}

	genName := GeneratedName(doc.Path)
	genOffset := s.mapper.ToGenerated(doc.Path, origOffset)

	eng, err := handle.Checked()
	if err != nil {
		return nil, err
	}

	defs, err := eng.Definitions(ctx, genName, genOffset)
	if err != nil {
		s.logger.Debug("definition query failed",
			logging.FieldPath, doc.Path, logging.FieldError, err)
		return nil, nil
	}
	return s.translator.Definitions(defs), nil
}

// OutlineOf returns the navigation tree of an already-tracked document
// in original coordinates. It does not refresh the snapshot, so outline
// views between edits cost no reconversion; a document that never went
// through UpdateDocument is ErrUnknownDocument.
func (s *Session) OutlineOf(ctx context.Context, path string) (*engine.NavigationTree, error) {
	if _, ok := s.cache.Get(path); !ok {
		return nil, ErrUnknownDocument
	}
	handle, ok := s.registry.EngineFor(path)
	if !ok {
		return nil, ErrUnknownDocument
	}
	eng, err := handle.Checked()
	if err != nil {
		return nil, err
	}

	genName := GeneratedName(path)
	tree, err := eng.NavigationTree(ctx, genName)
	if err != nil {
		s.logger.Debug("navigation query failed",
			logging.FieldPath, path, logging.FieldError, err)
		return nil, nil
	}
	return s.translator.NavigationTree(tree, genName), nil
}
