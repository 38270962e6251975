package bridge

import "github.com/dshills/langbridge/internal/engine"

// Translator rewrites engine results from generated coordinates into
// original-document coordinates. Inputs are never mutated; every method
// returns a rewritten copy. Results for files without a tracked
// snapshot pass through untranslated: only documents with a tracked
// original representation have a coordinate space to translate into.
type Translator struct {
	mapper *Mapper
	cache  *SnapshotCache
}

// NewTranslator creates a translator over the given mapper and cache.
func NewTranslator(mapper *Mapper, cache *SnapshotCache) *Translator {
	return &Translator{mapper: mapper, cache: cache}
}

// offset translates one generated offset and clamps it to the original
// document's bounds.
func (t *Translator) offset(genName string, off int) int {
	translated := t.mapper.ToOriginal(genName, off)
	if translated < 0 {
		return 0
	}
	if length, ok := t.mapper.OriginalLength(genName); ok && translated > length {
		return length
	}
	return translated
}

// span translates a generated span. Start and end are translated
// independently; a span that collapses keeps length zero.
func (t *Translator) span(genName string, s engine.Span) engine.Span {
	start := t.offset(genName, s.Start)
	end := t.offset(genName, s.End())
	if end < start {
		end = start
	}
	return engine.Span{Start: start, Length: end - start}
}

// fileName maps a generated file name to its original document path
// when one is tracked.
func (t *Translator) fileName(genName string) string {
	if snap, ok := t.cache.GetGenerated(genName); ok {
		return snap.Path
	}
	return genName
}

// Diagnostics translates a diagnostic list. Diagnostics without a start
// offset pass through with positions unset; they are never coerced to
// offset zero.
func (t *Translator) Diagnostics(diags []engine.Diagnostic, genName string) []engine.Diagnostic {
	if diags == nil {
		return nil
	}
	out := make([]engine.Diagnostic, 0, len(diags))
	for _, d := range diags {
		translated := d
		if d.File == genName || d.File == "" {
			translated.File = t.fileName(genName)
		}
		if d.Start != nil {
			start := t.offset(genName, *d.Start)
			translated.Start = &start
			if d.Length != nil {
				end := t.offset(genName, *d.Start+*d.Length)
				length := end - start
				if length < 0 {
					length = 0
				}
				translated.Length = &length
			}
		}
		out = append(out, translated)
	}
	return out
}

// QuickInfo translates hover information.
func (t *Translator) QuickInfo(info *engine.QuickInfo, genName string) *engine.QuickInfo {
	if info == nil {
		return nil
	}
	translated := *info
	translated.Span = t.span(genName, info.Span)
	return &translated
}

// Completions translates a completion list's replacement spans.
func (t *Translator) Completions(list *engine.CompletionList, genName string) *engine.CompletionList {
	if list == nil {
		return nil
	}
	translated := *list
	translated.Entries = make([]engine.CompletionEntry, len(list.Entries))
	for i, entry := range list.Entries {
		translated.Entries[i] = entry
		if entry.ReplacementSpan != nil {
			span := t.span(genName, *entry.ReplacementSpan)
			translated.Entries[i].ReplacementSpan = &span
		}
	}
	return &translated
}

// NavigationTree translates a navigation tree recursively.
func (t *Translator) NavigationTree(tree *engine.NavigationTree, genName string) *engine.NavigationTree {
	if tree == nil {
		return nil
	}
	translated := *tree
	translated.Spans = make([]engine.Span, len(tree.Spans))
	for i, s := range tree.Spans {
		translated.Spans[i] = t.span(genName, s)
	}
	if tree.NameSpan != nil {
		span := t.span(genName, *tree.NameSpan)
		translated.NameSpan = &span
	}
	if len(tree.ChildItems) > 0 {
		translated.ChildItems = make([]*engine.NavigationTree, len(tree.ChildItems))
		for i, child := range tree.ChildItems {
			translated.ChildItems[i] = t.NavigationTree(child, genName)
		}
	}
	return &translated
}

// Definitions translates definition locations. Definitions in files
// without a tracked snapshot are left in generated coordinates.
func (t *Translator) Definitions(defs []engine.DefinitionInfo) []engine.DefinitionInfo {
	if defs == nil {
		return nil
	}
	out := make([]engine.DefinitionInfo, 0, len(defs))
	for _, d := range defs {
		translated := d
		if _, ok := t.cache.GetGenerated(d.FileName); ok {
			translated.Span = t.span(d.FileName, d.Span)
			translated.FileName = t.fileName(d.FileName)
		}
		out = append(out, translated)
	}
	return out
}

// CodeFixes translates code-fix edit sets. Edits may touch files other
// than the one queried; each file's spans are translated only when that
// file has a tracked snapshot.
func (t *Translator) CodeFixes(fixes []engine.CodeFixAction) []engine.CodeFixAction {
	if fixes == nil {
		return nil
	}
	out := make([]engine.CodeFixAction, 0, len(fixes))
	for _, fix := range fixes {
		translated := fix
		translated.Changes = make([]engine.FileTextChanges, len(fix.Changes))
		for i, fc := range fix.Changes {
			translated.Changes[i] = fc
			if _, ok := t.cache.GetGenerated(fc.FileName); !ok {
				continue
			}
			changes := make([]engine.TextChange, len(fc.TextChanges))
			for j, tc := range fc.TextChanges {
				changes[j] = tc
				changes[j].Span = t.span(fc.FileName, tc.Span)
			}
			translated.Changes[i].FileName = t.fileName(fc.FileName)
			translated.Changes[i].TextChanges = changes
		}
		out = append(out, translated)
	}
	return out
}
