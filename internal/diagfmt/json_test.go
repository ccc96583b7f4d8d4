package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"f90norm/internal/diag"
	"f90norm/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.f90", []byte("subroutine s()\n"))

	bag := diag.NewBag(10)
	d := diag.NewError(diag.NorProcUnclosed,
		source.Pos{File: id, Line: 1}, `unclosed subroutine "s"`)
	bag.Add(d.WithNote(source.Pos{File: id, Line: 1}, "opened here"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	// Парсим обратно, чтобы убедиться в валидности
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\noutput: %s", err, buf.String())
	}

	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count=%d len=%d, want 1/1", output.Count, len(output.Diagnostics))
	}
	got := output.Diagnostics[0]
	if got.Severity != "ERROR" {
		t.Errorf("severity = %s, want ERROR", got.Severity)
	}
	if got.Code != "NOR0002" {
		t.Errorf("code = %s, want NOR0002", got.Code)
	}
	if got.File != "test.f90" || got.Line != 1 {
		t.Errorf("location = %s:%d, want test.f90:1", got.File, got.Line)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "opened here" {
		t.Errorf("notes = %+v", got.Notes)
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1), source.NewFileSet()); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	// пустой мешок даёт [], а не null
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Errorf("output: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"count": 0`) {
		t.Errorf("output: %s", buf.String())
	}
}
