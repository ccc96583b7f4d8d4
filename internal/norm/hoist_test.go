package norm

import (
	"sort"
	"testing"

	"f90norm/internal/proc"
	"f90norm/internal/source"
	"f90norm/internal/stmt"
)

func parse(t *testing.T, texts ...string) []stmt.Statement {
	t.Helper()
	lines := make([]source.Line, len(texts))
	for i, text := range texts {
		lines[i] = source.Line{Num: uint32(i + 1), Text: text} //nolint:gosec // test data
	}
	stmts, err := stmt.MergeContinuations(lines)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	return stmts
}

func extract(t *testing.T, stmts []stmt.Statement) []proc.Unit {
	t.Helper()
	units, err := proc.Extract(stmts)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return units
}

func texts(stmts []stmt.Statement) []string {
	rendered := stmt.RenderAll(stmts)
	out := make([]string, len(rendered))
	for i, ln := range rendered {
		out[i] = ln.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHoistSpecOrder(t *testing.T) {
	stmts := parse(t,
		"subroutine s()",
		"  use m",
		"  integer :: i",
		"  x = 1",
		"  real :: y",
		"end subroutine s",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine s()",
		"  use m",
		"  integer :: i",
		"  real :: y",
		"  x = 1",
		"end subroutine s",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistNeutralComesFirst(t *testing.T) {
	stmts := parse(t,
		"subroutine s()",
		"  x = 1",
		"  ! note",
		"  integer :: i",
		"end subroutine s",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine s()",
		"  ! note",
		"  integer :: i",
		"  x = 1",
		"end subroutine s",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistStopsAtContains(t *testing.T) {
	stmts := parse(t,
		"subroutine outer()",
		"  x = 1",
		"  integer :: i",
		"contains",
		"  subroutine inner()",
		"    y = 2",
		"    real :: r",
		"  end subroutine inner",
		"end subroutine outer",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine outer()",
		"  integer :: i",
		"  x = 1",
		"contains",
		"  subroutine inner()",
		"    real :: r",
		"    y = 2",
		"  end subroutine inner",
		"end subroutine outer",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistKeepsNestedUnitIntact(t *testing.T) {
	// inner появился без contains: extract это принимает, а hoist не
	// должен вытаскивать объявления из чужого тела
	stmts := parse(t,
		"subroutine outer()",
		"  x = 1",
		"  subroutine inner()",
		"    integer :: i",
		"  end subroutine inner",
		"  integer :: j",
		"end subroutine outer",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine outer()",
		"  integer :: j",
		"  x = 1",
		"  subroutine inner()",
		"    integer :: i",
		"  end subroutine inner",
		"end subroutine outer",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}

	again := texts(HoistDeclarations(parse(t, got...), extract(t, parse(t, got...))))
	if !equalStrings(again, want) {
		t.Errorf("second pass = %q, want %q", again, want)
	}
}

func TestHoistKeepsTypeDefTogether(t *testing.T) {
	stmts := parse(t,
		"subroutine geom()",
		"  x = 1.0",
		"  type point",
		"    real :: px",
		"  end type point",
		"  type(point) :: p",
		"end subroutine geom",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine geom()",
		"  type point",
		"    real :: px",
		"  end type point",
		"  type(point) :: p",
		"  x = 1.0",
		"end subroutine geom",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistKeepsInterfaceTogether(t *testing.T) {
	stmts := parse(t,
		"subroutine s()",
		"  call init()",
		"  interface",
		"    function cb(x)",
		"    end function cb",
		"  end interface",
		"  integer :: i",
		"end subroutine s",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine s()",
		"  interface",
		"    function cb(x)",
		"    end function cb",
		"  end interface",
		"  integer :: i",
		"  call init()",
		"end subroutine s",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistLeavesModuleLevelAlone(t *testing.T) {
	stmts := parse(t,
		"module config",
		"  x = 1",
		"  integer :: i",
		"end module config",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"module config",
		"  x = 1",
		"  integer :: i",
		"end module config",
	}
	if !equalStrings(got, want) {
		t.Errorf("module body reordered: %q", got)
	}
}

func TestHoistSiblingsStayIsolated(t *testing.T) {
	stmts := parse(t,
		"subroutine a()",
		"  x = 1",
		"  integer :: i",
		"end subroutine a",
		"subroutine b()",
		"  real :: r",
		"  y = 2",
		"end subroutine b",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"subroutine a()",
		"  integer :: i",
		"  x = 1",
		"end subroutine a",
		"subroutine b()",
		"  real :: r",
		"  y = 2",
		"end subroutine b",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}

func TestHoistPreservesMultiset(t *testing.T) {
	stmts := parse(t,
		"subroutine s()",
		"  call one()",
		"  integer :: i",
		"  ! between",
		"  call two()",
		"  real :: r",
		"  use late",
		"end subroutine s",
	)
	before := texts(stmts)
	after := texts(HoistDeclarations(stmts, extract(t, stmts)))
	sort.Strings(before)
	sort.Strings(after)
	if !equalStrings(before, after) {
		t.Errorf("multiset changed:\nbefore %q\nafter  %q", before, after)
	}
}

func TestHoistIdempotent(t *testing.T) {
	stmts := parse(t,
		"program main",
		"  use m",
		"  x = 1",
		"  integer :: i",
		"  type point",
		"    real :: px",
		"  end type point",
		"end program main",
	)
	units := extract(t, stmts)
	once := HoistDeclarations(stmts, units)
	twice := HoistDeclarations(once, units)
	if !equalStrings(texts(once), texts(twice)) {
		t.Errorf("second hoist changed output:\nonce  %q\ntwice %q", texts(once), texts(twice))
	}
}

func TestHoistProgramUnit(t *testing.T) {
	stmts := parse(t,
		"program main",
		"  print *, i",
		"  integer :: i",
		"end program main",
	)
	got := texts(HoistDeclarations(stmts, extract(t, stmts)))
	want := []string{
		"program main",
		"  integer :: i",
		"  print *, i",
		"end program main",
	}
	if !equalStrings(got, want) {
		t.Errorf("hoisted = %q, want %q", got, want)
	}
}
