package bridge

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// fileView is the virtual file system one project's engine reads from.
// It is the union of the project's declared files (read from disk), the
// generated representations of attached documents (read from the
// snapshot cache), and the ambient shim declarations. The name set is
// maintained incrementally on attach, never rebuilt per call.
type fileView struct {
	mu        sync.RWMutex
	cache     *SnapshotCache
	declared  map[string]struct{}
	generated map[string]struct{}
}

func newFileView(cache *SnapshotCache, declared []string) *fileView {
	v := &fileView{
		cache:     cache,
		declared:  make(map[string]struct{}, len(declared)),
		generated: make(map[string]struct{}),
	}
	for _, name := range declared {
		v.declared[name] = struct{}{}
	}
	return v
}

// addGenerated records an attached document's generated file name.
func (v *fileView) addGenerated(genName string) {
	v.mu.Lock()
	v.generated[genName] = struct{}{}
	v.mu.Unlock()
}

// ListFiles implements engine.FileSystem. A name declared by the
// project and also present as a generated or ambient file is listed
// once.
func (v *fileView) ListFiles() []string {
	seen := make(map[string]struct{}, len(v.declared)+len(v.generated)+len(ambientFiles))
	v.mu.RLock()
	for name := range v.declared {
		seen[name] = struct{}{}
	}
	for name := range v.generated {
		seen[name] = struct{}{}
	}
	v.mu.RUnlock()
	for name := range ambientFiles {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VersionOf implements engine.FileSystem.
func (v *fileView) VersionOf(file string) string {
	if _, ok := ambientFiles[file]; ok {
		return "1"
	}
	if snap, ok := v.cache.GetGenerated(file); ok {
		return strconv.Itoa(snap.SourceVersion)
	}
	if info, err := os.Stat(file); err == nil {
		return strconv.FormatInt(info.ModTime().UnixNano(), 10)
	}
	return ""
}

// SnapshotOf implements engine.FileSystem.
func (v *fileView) SnapshotOf(file string) (string, bool) {
	if text, ok := ambientFiles[file]; ok {
		return text, true
	}
	if snap, ok := v.cache.GetGenerated(file); ok {
		return snap.GeneratedText, true
	}
	v.mu.RLock()
	_, declared := v.declared[file]
	v.mu.RUnlock()
	if declared {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
	return "", false
}

// ResolveModule implements engine.FileSystem. Relative imports that
// point at an attached document resolve to its generated representation;
// relative imports of declared files resolve directly. Bare specifiers
// are left to the engine's own resolution.
func (v *fileView) ResolveModule(name, containingFile string) (string, bool) {
	if !strings.HasPrefix(name, "./") && !strings.HasPrefix(name, "../") {
		return "", false
	}

	base := filepath.Dir(containingFile)
	if orig, ok := OriginalName(containingFile); ok {
		base = filepath.Dir(orig)
	}
	candidate := filepath.Clean(filepath.Join(base, name))

	v.mu.RLock()
	defer v.mu.RUnlock()

	genName := GeneratedName(candidate)
	if _, ok := v.generated[genName]; ok {
		return genName, true
	}
	if _, ok := v.declared[candidate]; ok {
		return candidate, true
	}
	for _, ext := range []string{".ts", ".d.ts", ".js"} {
		if _, ok := v.declared[candidate+ext]; ok {
			return candidate + ext, true
		}
	}
	return "", false
}
