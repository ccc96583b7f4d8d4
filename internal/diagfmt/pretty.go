package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"f90norm/internal/diag"
	"f90norm/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.Faint)
)

// Pretty форматирует диагностики в человекочитаемый вид, по одной на
// строку:
//
//	<path>:<line>: <severity>[<CODE>]: <message>
//	    <текст исходной строки>
//	  note: <message>
//
// Идёт по bag.Items() как есть (ожидается bag.Sort() заранее); пути и
// текст строк берутся из fs.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s %s: %s\n",
		location(fs, d.Primary), severity(d.Severity, d.Code), d.Message)

	if opts.ShowSource && d.Primary.IsValid() && fs != nil {
		if text := fs.Get(d.Primary.File).GetLine(d.Primary.Line); text != "" {
			fmt.Fprintf(w, "    %s\n", strings.TrimRight(text, " \t"))
		}
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", noteColor.Sprint("note:"), n.Msg)
		}
	}
}

// location renders "path:line:"; without a line it is just "path:".
func location(fs *source.FileSet, pos source.Pos) string {
	path := "<unknown>"
	if fs != nil {
		path = fs.Get(pos.File).Path
	}
	if !pos.IsValid() {
		return path + ":"
	}
	return fmt.Sprintf("%s:%d:", path, pos.Line)
}

func severity(sev diag.Severity, code diag.Code) string {
	label := fmt.Sprintf("%s[%s]", strings.ToLower(sev.String()), code.ID())
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	case diag.SevInfo:
		return infoColor.Sprint(label)
	default:
		return label
	}
}
