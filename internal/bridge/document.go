package bridge

// Document is the caller-owned view of an original source document. The
// bridge never mutates documents; it derives snapshots from them.
// Version must increase monotonically with every content change.
type Document struct {
	Path    string
	Version int
	Text    string
}

// GeneratedSuffix is appended to a document path to name its generated
// representation inside the engine's virtual file system.
const GeneratedSuffix = ".gen.ts"

// GeneratedName returns the virtual file name of a document's generated
// representation.
func GeneratedName(path string) string {
	return path + GeneratedSuffix
}

// OriginalName returns the document path for a generated file name and
// whether the name carries the generated suffix.
func OriginalName(genName string) (string, bool) {
	if len(genName) <= len(GeneratedSuffix) {
		return "", false
	}
	cut := len(genName) - len(GeneratedSuffix)
	if genName[cut:] != GeneratedSuffix {
		return "", false
	}
	return genName[:cut], true
}
