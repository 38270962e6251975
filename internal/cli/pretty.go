package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dshills/langbridge/internal/engine"
)

// printer renders diagnostics for the terminal. Styling is disabled
// when stdout is not a TTY.
type printer struct {
	out     io.Writer
	color   bool
	errSt   lipgloss.Style
	warnSt  lipgloss.Style
	infoSt  lipgloss.Style
	pathSt  lipgloss.Style
	faintSt lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &printer{
		out:     out,
		color:   color,
		errSt:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warnSt:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		infoSt:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		pathSt:  lipgloss.NewStyle().Bold(true),
		faintSt: lipgloss.NewStyle().Faint(true),
	}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// diagnostic prints one diagnostic in original-document coordinates.
func (p *printer) diagnostic(path, text string, d engine.Diagnostic) {
	label := p.render(p.severityStyle(d.Category), d.Category.String())

	location := p.render(p.pathSt, path)
	if d.Start != nil {
		line, col := lineColumn(text, *d.Start)
		location = p.render(p.pathSt, fmt.Sprintf("%s:%d:%d", path, line, col))
	}

	code := ""
	if d.Code != 0 {
		code = " " + p.render(p.faintSt, fmt.Sprintf("[%d]", d.Code))
	}

	fmt.Fprintf(p.out, "%s: %s: %s%s\n", location, label, d.Message, code)
}

func (p *printer) severityStyle(c engine.DiagnosticCategory) lipgloss.Style {
	switch c {
	case engine.CategoryError:
		return p.errSt
	case engine.CategoryWarning:
		return p.warnSt
	default:
		return p.infoSt
	}
}

// summary prints the closing count line.
func (p *printer) summary(files, issues int) {
	if issues == 0 {
		fmt.Fprintf(p.out, "%s\n", p.render(p.faintSt, fmt.Sprintf("%d file(s) checked, no issues", files)))
		return
	}
	fmt.Fprintf(p.out, "%d file(s) checked, %d issue(s)\n", files, issues)
}

// lineColumn converts a byte offset to a 1-based line and column for
// display.
func lineColumn(text string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		col = offset - i
	} else {
		col = offset + 1
	}
	return line, col
}
