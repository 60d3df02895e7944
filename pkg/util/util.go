// Package util renders diagnostics against their source text. Nothing
// here exits the process; the driver decides what a diagnostic means.
package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tipy-lang/tipc/pkg/diag"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiPlum  = "\033[35m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

// SourceFile is one compilation unit kept around for error rendering.
type SourceFile struct {
	Name    string
	Content string
	lines   []string
}

func NewSourceFile(name, content string) *SourceFile {
	return &SourceFile{Name: name, Content: content, lines: strings.Split(content, "\n")}
}

func (sf *SourceFile) line(n int) (string, bool) {
	if n < 1 || n > len(sf.lines) {
		return "", false
	}
	return sf.lines[n-1], true
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintError writes the diagnostic and, when the span is known, the
// offending source line with a caret underline.
func PrintError(w io.Writer, src *SourceFile, err *diag.Error) {
	color := useColor(w)
	if color {
		fmt.Fprintf(w, "%s%s%s%s\n", ansiBold, ansiRed, err.Error(), ansiReset)
	} else {
		fmt.Fprintln(w, err.Error())
	}
	printSpan(w, src, err.Span, color, ansiRed)
}

// PrintWarning is PrintError for non-fatal diagnostics.
func PrintWarning(w io.Writer, src *SourceFile, warn *diag.Warning) {
	color := useColor(w)
	if color {
		fmt.Fprintf(w, "%s%s%s%s\n", ansiBold, ansiPlum, warn.String(), ansiReset)
	} else {
		fmt.Fprintln(w, warn.String())
	}
	printSpan(w, src, warn.Span, color, ansiPlum)
}

func printSpan(w io.Writer, src *SourceFile, span diag.Span, color bool, tint string) {
	if src == nil || !span.Known() {
		return
	}
	text, ok := src.line(int(span.Line))
	if !ok {
		return
	}

	lineNo := fmt.Sprintf("%4d", span.Line)
	gutter := strings.Repeat(" ", len(lineNo))

	caretCol := int(span.Column)
	if caretCol < 1 {
		caretCol = 1
	}
	width := span.EndByte - span.StartByte
	if width < 1 {
		width = 1
	}
	if caretCol-1+width > len(text) {
		width = len(text) - caretCol + 1
		if width < 1 {
			width = 1
		}
	}
	underline := strings.Repeat(" ", caretCol-1) + "^" + strings.Repeat("~", width-1)

	if color {
		fmt.Fprintf(w, "%s%s |%s %s\n", ansiGray, lineNo, ansiReset, text)
		fmt.Fprintf(w, "%s%s |%s %s%s%s\n", ansiGray, gutter, ansiReset, tint, underline, ansiReset)
	} else {
		fmt.Fprintf(w, "%s | %s\n", lineNo, text)
		fmt.Fprintf(w, "%s | %s\n", gutter, underline)
	}
}
