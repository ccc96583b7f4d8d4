package stmt

import (
	"errors"
	"testing"

	"f90norm/internal/source"
)

func mkLines(texts ...string) []source.Line {
	out := make([]source.Line, len(texts))
	for i, t := range texts {
		out[i] = source.Line{Num: uint32(i + 1), Text: t} //nolint:gosec // test data
	}
	return out
}

func TestMergeIdentityWithoutContinuations(t *testing.T) {
	// Без маркеров продолжения слияние — тождественная операция
	input := []string{
		"program t",
		"  integer :: i",
		"",
		"  ! a comment",
		"  i = 1 ! inline",
		"end program t",
	}
	stmts, err := MergeContinuations(mkLines(input...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != len(input) {
		t.Fatalf("expected %d statements, got %d", len(input), len(stmts))
	}
	rendered := RenderAll(stmts)
	for i, line := range rendered {
		if line.Text != input[i] {
			t.Errorf("line %d: got %q, want %q", i+1, line.Text, input[i])
		}
	}
}

func TestMergeSimpleContinuation(t *testing.T) {
	stmts, err := MergeContinuations(mkLines("x = 1 + &", "     2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if stmts[0].Code != "x = 1 +      2" {
		t.Errorf("merged code = %q", stmts[0].Code)
	}
	if stmts[0].StartLine() != 1 || stmts[0].EndLine() != 2 {
		t.Errorf("span = [%d, %d], want [1, 2]", stmts[0].StartLine(), stmts[0].EndLine())
	}
}

func TestMergeLeadingMarkerMidToken(t *testing.T) {
	// Разрыв посреди имени: без ведущего & склейка бы исказила имя
	stmts, err := MergeContinuations(mkLines("x = long_na&", "     &me + 1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmts[0].Code != "x = long_name + 1" {
		t.Errorf("merged code = %q", stmts[0].Code)
	}
}

func TestMergeStringContinuation(t *testing.T) {
	stmts, err := MergeContinuations(mkLines("print *, 'abc &", "&def'"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmts[0].Code != "print *, 'abc def'" {
		t.Errorf("merged code = %q", stmts[0].Code)
	}
}

func TestMergeRecordsCommentsInOrder(t *testing.T) {
	stmts, err := MergeContinuations(mkLines(
		"call foo(a, & ! first",
		"  ! standalone note",
		"",
		"  b) ! last",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	st := stmts[0]
	// хвостовой пробел перед inline-комментарием сохраняется в коде
	if st.Code != "call foo(a,   b) " {
		t.Errorf("merged code = %q", st.Code)
	}
	want := []Comment{
		{Line: 1, Text: "! first"},
		{Line: 2, Text: "! standalone note"},
		{Line: 4, Text: "! last"},
	}
	if len(st.Comments) != len(want) {
		t.Fatalf("comments = %+v", st.Comments)
	}
	for i, c := range st.Comments {
		if c != want[i] {
			t.Errorf("comment %d = %+v, want %+v", i, c, want[i])
		}
	}
	if st.EndLine() != 4 {
		t.Errorf("EndLine = %d, want 4", st.EndLine())
	}
}

func TestMergeDanglingMarkerFails(t *testing.T) {
	_, err := MergeContinuations(mkLines("x = 1", "y = 2 + &"))
	if err == nil {
		t.Fatal("expected ContinuationError, got nil")
	}
	var ce *ContinuationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContinuationError, got %T", err)
	}
	if ce.Line != 2 {
		t.Errorf("error line = %d, want 2", ce.Line)
	}
}

func TestMergeDanglingMarkerBeforeTrailingComments(t *testing.T) {
	// Хвостовые комментарии не спасают оборванное продолжение
	_, err := MergeContinuations(mkLines("y = 2 + &", "! only a comment"))
	var ce *ContinuationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContinuationError, got %v", err)
	}
	if ce.Line != 1 {
		t.Errorf("error line = %d, want 1", ce.Line)
	}
}

func TestMergeChainedContinuations(t *testing.T) {
	stmts, err := MergeContinuations(mkLines(
		"s = a + &",
		"    b + &",
		"    c",
		"t = 1",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[0].Code != "s = a +     b +     c" {
		t.Errorf("merged code = %q", stmts[0].Code)
	}
	if stmts[1].Code != "t = 1" {
		t.Errorf("second statement = %q", stmts[1].Code)
	}
}

func TestMergeAmpersandInsideStringIsNotAMarker(t *testing.T) {
	stmts, err := MergeContinuations(mkLines("s = 'a & b'"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 || stmts[0].Code != "s = 'a & b'" {
		t.Errorf("statement = %+v", stmts[0])
	}
}
