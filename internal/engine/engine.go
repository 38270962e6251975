// Package engine defines the contract between the bridge layer and the
// analysis engine that operates on generated script files. The engine is
// an external collaborator: this package only describes the virtual file
// system it reads from, the queries it answers, and the result shapes it
// returns. All positions in engine results are byte offsets into the
// generated representation.
package engine

import "context"

// Options are the resolved engine options for one project. Known fields
// are decoded for quick access; Raw carries the full merged options JSON
// for engines that understand more than the bridge does.
type Options struct {
	// Forced by the bridge, always set regardless of user config.
	NoEmit         bool
	Declaration    bool
	PreserveMarkup bool
	SkipLibCheck   bool

	// Pass-through user options.
	Strict bool
	Target string

	// Raw is the merged options object as JSON.
	Raw string
}

// FileSystem is the virtual file view the engine reads from. It is
// assembled by the registry from declared project files, attached
// documents' generated representations, and ambient shim declarations.
type FileSystem interface {
	// ListFiles returns the names of all files visible to the engine.
	ListFiles() []string

	// VersionOf returns an opaque version string for a file. It changes
	// whenever the file's content changes; the engine may use it to
	// invalidate internal caches.
	VersionOf(file string) string

	// SnapshotOf returns the current content of a file.
	SnapshotOf(file string) (string, bool)

	// ResolveModule resolves an import name relative to a containing
	// file to a file name visible through this view.
	ResolveModule(name, containingFile string) (string, bool)
}

// Engine answers analysis queries for generated files. Implementations
// must be safe for use by one goroutine at a time per instance; the
// registry serializes construction and replacement.
type Engine interface {
	// Diagnostics returns syntactic diagnostics for a file.
	Diagnostics(ctx context.Context, file string) ([]Diagnostic, error)

	// Suggestions returns suggestion-level diagnostics for a file.
	Suggestions(ctx context.Context, file string) ([]Diagnostic, error)

	// SemanticIssues returns semantic diagnostics for a file.
	SemanticIssues(ctx context.Context, file string) ([]Diagnostic, error)

	// QuickInfo returns hover information at an offset, or nil.
	QuickInfo(ctx context.Context, file string, offset int) (*QuickInfo, error)

	// Completions returns completion entries at an offset, or nil.
	Completions(ctx context.Context, file string, offset int) (*CompletionList, error)

	// NavigationTree returns the file's navigation tree, or nil.
	NavigationTree(ctx context.Context, file string) (*NavigationTree, error)

	// Definitions returns definition locations for the symbol at an offset.
	Definitions(ctx context.Context, file string, offset int) ([]DefinitionInfo, error)

	// CodeFixes returns code fixes for the given span and error codes.
	CodeFixes(ctx context.Context, file string, start, end int, codes []int) ([]CodeFixAction, error)

	// Dispose releases the engine instance. After Dispose the instance
	// must not be queried again.
	Dispose()
}

// Factory constructs an engine instance for one project. It is called by
// the registry on project creation and again after a structural kind
// change forces replacement.
type Factory func(opts Options, fs FileSystem) (Engine, error)
