package diagfmt

import (
	"encoding/json"
	"io"

	"f90norm/internal/diag"
	"f90norm/internal/source"
)

// NoteJSON представляет дополнительную заметку для JSON.
type NoteJSON struct {
	Message string `json:"message"`
	Line    uint32 `json:"line,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате.
type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	File     string     `json:"file"`
	Line     uint32     `json:"line,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildOutput формирует структуру JSON-вывода без сериализации.
func BuildOutput(bag *diag.Bag, fs *source.FileSet) DiagnosticsOutput {
	items := bag.Items()
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(items)),
		Count:       len(items),
	}
	for _, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			File:     pathOf(fs, d.Primary.File),
			Line:     d.Primary.Line,
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Line: n.Pos.Line})
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON сериализует диагностики в w с отступами.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(bag, fs))
}

func pathOf(fs *source.FileSet, id source.FileID) string {
	if fs == nil {
		return ""
	}
	return fs.Get(id).Path
}
