package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddVirtualSplitsLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.f90", []byte("program t\n  x = 1\nend program t\n"))
	f := fs.Get(id)

	if f.Flags&FileVirtual == 0 {
		t.Errorf("expected FileVirtual flag")
	}
	if len(f.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(f.Lines))
	}
	if f.Lines[0].Num != 1 || f.Lines[0].Text != "program t" {
		t.Errorf("line 1 = {%d %q}", f.Lines[0].Num, f.Lines[0].Text)
	}
	if f.Lines[2].Num != 3 || f.Lines[2].Text != "end program t" {
		t.Errorf("line 3 = {%d %q}", f.Lines[2].Num, f.Lines[2].Text)
	}
}

func TestAddVirtualNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("crlf.f90", []byte("x = 1\r\ny = 2\r\n"))
	f := fs.Get(id)

	if f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected FileNormalizedCRLF flag")
	}
	if len(f.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(f.Lines))
	}
	if f.Lines[0].Text != "x = 1" {
		t.Errorf("line 1 = %q, CR leaked through", f.Lines[0].Text)
	}
}

func TestAddVirtualStripsBOM(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("bom.f90", []byte("\xEF\xBB\xBFx = 1\n"))
	f := fs.Get(id)

	if f.Flags&FileHadBOM == 0 {
		t.Errorf("expected FileHadBOM flag")
	}
	if f.Lines[0].Text != "x = 1" {
		t.Errorf("line 1 = %q, BOM leaked through", f.Lines[0].Text)
	}
}

func TestLoadDecodesLatin1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.f90")
	// "résultat" в ISO-8859-1: é = 0xE9
	raw := []byte("x = 1 ! r\xE9sultat\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileDecodedLatin1 == 0 {
		t.Errorf("expected FileDecodedLatin1 flag")
	}
	if f.Lines[0].Text != "x = 1 ! résultat" {
		t.Errorf("line 1 = %q", f.Lines[0].Text)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.f90", []byte("one\ntwo\n"))
	f := fs.Get(id)

	if got := f.GetLine(2); got != "two" {
		t.Errorf("GetLine(2) = %q, want %q", got, "two")
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("GetLine(0) = %q, want empty", got)
	}
	if got := f.GetLine(3); got != "" {
		t.Errorf("GetLine(3) = %q, want empty", got)
	}
}

func TestGetByPath(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("dir/a.f90", []byte("x\n"))

	if _, ok := fs.GetByPath("dir/a.f90"); !ok {
		t.Errorf("GetByPath did not find added file")
	}
	if _, ok := fs.GetByPath("dir/b.f90"); ok {
		t.Errorf("GetByPath found a file that was never added")
	}
}

func TestJoinLinesRoundTrip(t *testing.T) {
	content := []byte("program t\n  x = 1\nend\n")
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.f90", content))

	back := JoinLines(f.Lines)
	if string(back) != string(content) {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", back, content)
	}
}

func TestSplitLinesNoTrailingNewline(t *testing.T) {
	// Последняя строка без \n не должна теряться
	lines := splitLines([]byte("a\nb"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Text != "b" {
		t.Errorf("line 2 = %q", lines[1].Text)
	}
}
