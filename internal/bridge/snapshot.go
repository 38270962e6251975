package bridge

// Kind classifies the structural shape of a generated representation.
// The engine configuration depends on the kind, so a kind change forces
// engine replacement for the owning project.
type Kind int

const (
	// KindUnknown means the converter could not classify the document,
	// typically because conversion failed.
	KindUnknown Kind = iota
	// KindScriptOnly means the generated representation is plain script
	// with no markup-derived constructs.
	KindScriptOnly
	// KindMarkupScript means the generated representation interleaves
	// markup-derived code with script.
	KindMarkupScript
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindScriptOnly:
		return "script-only"
	case KindMarkupScript:
		return "markup+script"
	default:
		return "unknown"
	}
}

// ConvertResult is the output of a Converter for one document.
type ConvertResult struct {
	// GeneratedText is the representation the engine analyzes.
	GeneratedText string

	// MapJSON is the position-map artifact correlating generated and
	// original positions. Empty when the conversion produced no map.
	MapJSON string

	// Kind classifies the generated representation.
	Kind Kind
}

// Converter transforms original document text into its generated
// representation. Convert must be pure: same inputs, same outputs, no
// side effects. Failure is communicated by error and is caught at the
// snapshot cache boundary.
type Converter interface {
	Convert(text, path string) (ConvertResult, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(text, path string) (ConvertResult, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(text, path string) (ConvertResult, error) {
	return f(text, path)
}

// Snapshot is the cached generated representation of one document
// version. A snapshot is valid only while SourceVersion equals the
// document's current version.
type Snapshot struct {
	// Path is the original document path.
	Path string

	// SourceVersion is the document version the snapshot derives from.
	SourceVersion int

	// SourceText is the original text the snapshot derives from. The
	// mapper needs it to convert offsets on the original side.
	SourceText string

	// GeneratedText is the converter output, empty when conversion failed.
	GeneratedText string

	// GeneratedLength is len(GeneratedText), kept explicit because the
	// engine's virtual file system reports it without touching the text.
	GeneratedLength int

	// Kind classifies the generated representation.
	Kind Kind

	// MapJSON is the raw position-map artifact, empty when absent.
	MapJSON string
}

// GeneratedName returns the snapshot's virtual file name.
func (s *Snapshot) GeneratedName() string {
	return GeneratedName(s.Path)
}

// HasMap reports whether the snapshot carries a position map.
func (s *Snapshot) HasMap() bool {
	return s.MapJSON != ""
}
