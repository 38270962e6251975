// Package enginetest provides a deterministic in-process engine for
// tests: results are scripted per generated file name, queries are
// recorded, and instances carry an identity so lifecycle tests can
// assert which instance served a request.
package enginetest

import (
	"context"
	"sync"

	"github.com/dshills/langbridge/internal/engine"
)

// Fake is a scripted engine instance.
type Fake struct {
	// ID is the creation ordinal assigned by the Factory, starting at 1.
	ID int

	// Options and FS are what the factory received.
	Options engine.Options
	FS      engine.FileSystem

	// Scripted results, keyed by generated file name.
	DiagnosticsByFile map[string][]engine.Diagnostic
	SuggestionsByFile map[string][]engine.Diagnostic
	SemanticByFile    map[string][]engine.Diagnostic
	QuickInfoByFile   map[string]*engine.QuickInfo
	CompletionsByFile map[string]*engine.CompletionList
	NavTreeByFile     map[string]*engine.NavigationTree
	DefinitionsByFile map[string][]engine.DefinitionInfo
	CodeFixesByFile   map[string][]engine.CodeFixAction

	// Err, when set, fails every query.
	Err error

	mu       sync.Mutex
	queries  []string
	disposed bool
}

// Queries returns the names of the queries issued so far.
func (f *Fake) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// Disposed reports whether Dispose was called.
func (f *Fake) Disposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposed
}

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.queries = append(f.queries, name)
	f.mu.Unlock()
}

// Diagnostics implements engine.Engine.
func (f *Fake) Diagnostics(_ context.Context, file string) ([]engine.Diagnostic, error) {
	f.record("diagnostics")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.DiagnosticsByFile[file], nil
}

// Suggestions implements engine.Engine.
func (f *Fake) Suggestions(_ context.Context, file string) ([]engine.Diagnostic, error) {
	f.record("suggestions")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.SuggestionsByFile[file], nil
}

// SemanticIssues implements engine.Engine.
func (f *Fake) SemanticIssues(_ context.Context, file string) ([]engine.Diagnostic, error) {
	f.record("semantic")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.SemanticByFile[file], nil
}

// QuickInfo implements engine.Engine.
func (f *Fake) QuickInfo(_ context.Context, file string, _ int) (*engine.QuickInfo, error) {
	f.record("quickinfo")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.QuickInfoByFile[file], nil
}

// Completions implements engine.Engine.
func (f *Fake) Completions(_ context.Context, file string, _ int) (*engine.CompletionList, error) {
	f.record("completions")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CompletionsByFile[file], nil
}

// NavigationTree implements engine.Engine.
func (f *Fake) NavigationTree(_ context.Context, file string) (*engine.NavigationTree, error) {
	f.record("navtree")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.NavTreeByFile[file], nil
}

// Definitions implements engine.Engine.
func (f *Fake) Definitions(_ context.Context, file string, _ int) ([]engine.DefinitionInfo, error) {
	f.record("definitions")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.DefinitionsByFile[file], nil
}

// CodeFixes implements engine.Engine.
func (f *Fake) CodeFixes(_ context.Context, file string, _, _ int, _ []int) ([]engine.CodeFixAction, error) {
	f.record("codefixes")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CodeFixesByFile[file], nil
}

// Dispose implements engine.Engine.
func (f *Fake) Dispose() {
	f.mu.Lock()
	f.disposed = true
	f.mu.Unlock()
}

// Factory creates Fake instances and records them.
type Factory struct {
	mu      sync.Mutex
	created []*Fake

	// Configure, when set, seeds each new instance with results.
	Configure func(*Fake)

	// CreateErr, when set, fails every creation.
	CreateErr error
}

// New is an engine.Factory.
func (f *Factory) New(opts engine.Options, fs engine.FileSystem) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	fake := &Fake{
		ID:      len(f.created) + 1,
		Options: opts,
		FS:      fs,
	}
	if f.Configure != nil {
		f.Configure(fake)
	}
	f.created = append(f.created, fake)
	return fake, nil
}

// Created returns every instance the factory has built.
func (f *Factory) Created() []*Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Fake, len(f.created))
	copy(out, f.created)
	return out
}
