package driver

import (
	"context"
	"reflect"
	"testing"

	"f90norm/internal/diag"
	"f90norm/internal/proc"
)

const twoUnits = "subroutine alpha()\nend subroutine alpha\n\nfunction beta() result(r)\n  integer :: r\n  r = 1\nend function beta\n"

var twoUnitsWant = []proc.Unit{
	{Name: "alpha", Kind: proc.KindSubroutine, Start: 1, End: 2},
	{Name: "beta", Kind: proc.KindFunction, Start: 4, End: 7},
}

func runProcedures(t *testing.T, paths []string, opts ProcedureOptions) []ProcedureResult {
	t.Helper()
	_, results, err := ProcedurePaths(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("procedure paths: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results for %d paths", len(results), len(paths))
	}
	return results
}

func TestProcedurePathsExtractsUnits(t *testing.T) {
	tmp := t.TempDir()
	path := writeSource(t, tmp, "units.f90", twoUnits)

	results := runProcedures(t, []string{path}, ProcedureOptions{})
	if results[0].FromCache {
		t.Error("cacheless run claims a cache hit")
	}
	if !reflect.DeepEqual(results[0].Units, twoUnitsWant) {
		t.Errorf("units = %+v, want %+v", results[0].Units, twoUnitsWant)
	}
}

func TestProcedurePathsCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache()
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	tmp := t.TempDir()
	path := writeSource(t, tmp, "units.f90", twoUnits)

	first := runProcedures(t, []string{path}, ProcedureOptions{Cache: cache})
	if first[0].FromCache {
		t.Error("first run claims a cache hit")
	}

	second := runProcedures(t, []string{path}, ProcedureOptions{Cache: cache})
	if !second[0].FromCache {
		t.Error("second run missed the cache")
	}
	if !reflect.DeepEqual(second[0].Units, twoUnitsWant) {
		t.Errorf("cached units = %+v, want %+v", second[0].Units, twoUnitsWant)
	}
}

func TestProcedurePathsBoundaryError(t *testing.T) {
	tmp := t.TempDir()
	path := writeSource(t, tmp, "open.f90", "subroutine s()\n")

	results := runProcedures(t, []string{path}, ProcedureOptions{})
	if results[0].Units != nil {
		t.Errorf("units = %+v for a broken file", results[0].Units)
	}
	items := results[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.NorProcUnclosed {
		t.Errorf("diagnostics = %+v, want one NOR0002", items)
	}
}

func TestProcedurePathsLoadError(t *testing.T) {
	results := runProcedures(t, []string{t.TempDir() + "/nope.f90"}, ProcedureOptions{})
	if results[0].Err == nil {
		t.Fatal("no error for missing file")
	}
	items := results[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFailed {
		t.Errorf("diagnostics = %+v, want one IO0001", items)
	}
}
