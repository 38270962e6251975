package engine

// Span identifies a region of a file as a start byte offset and length.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the exclusive end offset of the span.
func (s Span) End() int {
	return s.Start + s.Length
}

// DiagnosticCategory classifies a diagnostic.
type DiagnosticCategory int

const (
	// CategoryError is a hard error.
	CategoryError DiagnosticCategory = iota
	// CategoryWarning is a warning.
	CategoryWarning
	// CategorySuggestion is a suggestion-level issue.
	CategorySuggestion
	// CategoryMessage is an informational message.
	CategoryMessage
)

// String returns a human-readable category name.
func (c DiagnosticCategory) String() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategorySuggestion:
		return "suggestion"
	case CategoryMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported issue. Start and Length are nil for
// engine-internal diagnostics that have no location; translators must
// preserve that absence rather than coerce it to offset zero.
type Diagnostic struct {
	File     string             `json:"file,omitempty"`
	Start    *int               `json:"start,omitempty"`
	Length   *int               `json:"length,omitempty"`
	Message  string             `json:"message"`
	Code     int                `json:"code,omitempty"`
	Category DiagnosticCategory `json:"category"`
	Source   string             `json:"source,omitempty"`
}

// QuickInfo is hover information for a single span.
type QuickInfo struct {
	Kind          string `json:"kind,omitempty"`
	KindModifiers string `json:"kindModifiers,omitempty"`
	Span          Span   `json:"span"`
	DisplayText   string `json:"displayText"`
	Documentation string `json:"documentation,omitempty"`
}

// CompletionEntry is one completion candidate.
type CompletionEntry struct {
	Name            string `json:"name"`
	Kind            string `json:"kind,omitempty"`
	SortText        string `json:"sortText,omitempty"`
	InsertText      string `json:"insertText,omitempty"`
	ReplacementSpan *Span  `json:"replacementSpan,omitempty"`
}

// CompletionList is the result of a completion query.
type CompletionList struct {
	IsGlobalCompletion      bool              `json:"isGlobalCompletion"`
	IsMemberCompletion      bool              `json:"isMemberCompletion"`
	IsNewIdentifierLocation bool              `json:"isNewIdentifierLocation"`
	Entries                 []CompletionEntry `json:"entries"`
}

// NavigationTree is a recursive outline of a file.
type NavigationTree struct {
	Text       string            `json:"text"`
	Kind       string            `json:"kind,omitempty"`
	Spans      []Span            `json:"spans"`
	NameSpan   *Span             `json:"nameSpan,omitempty"`
	ChildItems []*NavigationTree `json:"childItems,omitempty"`
}

// DefinitionInfo is one definition location for a symbol.
type DefinitionInfo struct {
	FileName      string `json:"fileName"`
	Span          Span   `json:"span"`
	Kind          string `json:"kind,omitempty"`
	Name          string `json:"name,omitempty"`
	ContainerName string `json:"containerName,omitempty"`
}

// TextChange is a single edit within a file.
type TextChange struct {
	Span    Span   `json:"span"`
	NewText string `json:"newText"`
}

// FileTextChanges groups edits for one file.
type FileTextChanges struct {
	FileName    string       `json:"fileName"`
	TextChanges []TextChange `json:"textChanges"`
}

// CodeFixAction is one applicable fix, possibly touching several files.
type CodeFixAction struct {
	Description string            `json:"description"`
	FixName     string            `json:"fixName,omitempty"`
	Changes     []FileTextChanges `json:"changes"`
}
