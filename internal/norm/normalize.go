// Package norm composes the transform pipeline over one source file:
// continuation merging, semicolon splitting, separator insertion, procedure
// extraction and declaration hoisting, plus the optional implicit-none and
// declaration-merging passes. Every stage is a pure function over statement
// or line sequences; this package only decides the order and converts stage
// errors into diagnostics.
package norm

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"f90norm/internal/diag"
	"f90norm/internal/proc"
	"f90norm/internal/source"
	"f90norm/internal/stmt"
)

type Options struct {
	ImplicitNone bool // insert "implicit none" where a unit body lacks it
	MergeDecls   bool // consolidate runs of same-prefix declarations
	Width        int  // wrap width for merged declarations, 0 = DefaultWidth

	Reporter diag.Reporter // warnings sink, may be nil
	Observer PhaseObserver // phase boundaries, may be nil
}

type Result struct {
	Output  []byte // normalized file content
	Units   []proc.Unit
	Changed bool // Output differs from the loaded content
}

// Normalize runs the whole pipeline over file. Warnings go to opts.Reporter
// (which may be nil); a returned error means the file could not be
// normalized at all and nothing should be written. Use Diagnose to turn
// that error into a diagnostic.
func Normalize(file *source.File, opts Options) (Result, error) {
	report := opts.Reporter
	if report == nil {
		report = diag.NopReporter{}
	}
	phase := phaseFunc(opts.Observer)

	done := phase("merge")
	stmts, err := stmt.MergeContinuations(file.Lines)
	if err != nil {
		return Result{}, err
	}
	done(fmt.Sprintf("stmts=%d", len(stmts)))

	done = phase("split")
	var split []stmt.Statement
	for _, st := range stmts {
		split = append(split, stmt.Split(st)...)
	}
	done(fmt.Sprintf("stmts=%d", len(split)))

	done = phase("colonize")
	for i := range split {
		if stmt.SuspectStatementFunction(split[i].Code) {
			pos := source.Pos{File: file.ID, Line: split[i].StartLine()}
			report.Report(diag.NewWarning(diag.NorStatementFunction, pos,
				fmt.Sprintf("%q has the shape of a statement function and stays executable",
					strings.TrimSpace(split[i].Code))))
		}
		split[i].Code = stmt.Colonize(split[i].Code)
	}
	done("")

	done = phase("extract")
	units, err := proc.Extract(split)
	if err != nil {
		return Result{}, err
	}
	done(fmt.Sprintf("units=%d", len(units)))

	done = phase("hoist")
	out := HoistDeclarations(split, units)
	if opts.ImplicitNone {
		out = InsertImplicitNone(out, units)
	}

	lines := stmt.RenderAll(out)
	if opts.MergeDecls {
		lines = MergeDecls(lines, opts.Width)
	}

	content := source.JoinLines(lines)
	done("")

	return Result{
		Output:  content,
		Units:   units,
		Changed: !bytes.Equal(content, file.Content),
	}, nil
}

// phaseFunc wraps obs into a begin function: calling it emits PhaseStart
// and returns the matching end function. A nil observer costs nothing.
func phaseFunc(obs PhaseObserver) func(name string) func(note string) {
	if obs == nil {
		return func(string) func(string) { return func(string) {} }
	}
	return func(name string) func(note string) {
		obs(PhaseEvent{Name: name, Status: PhaseStart})
		start := time.Now()
		return func(note string) {
			obs(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Note: note})
		}
	}
}

// Diagnose maps a pipeline error onto its diagnostic. Unknown errors keep
// their text under the catch-all code.
func Diagnose(file source.FileID, err error) diag.Diagnostic {
	var ce *stmt.ContinuationError
	if errors.As(err, &ce) {
		return diag.NewError(diag.NorContinuationDangling,
			source.Pos{File: file, Line: ce.Line},
			"dangling continuation marker at end of input")
	}

	var be *proc.BoundaryError
	if errors.As(err, &be) {
		code := diag.UnknownCode
		switch be.Kind {
		case proc.BoundaryUnclosed:
			code = diag.NorProcUnclosed
		case proc.BoundaryEndMismatch:
			code = diag.NorProcEndMismatch
		case proc.BoundaryUnexpectedEnd:
			code = diag.NorProcUnexpectedEnd
		case proc.BoundaryInterfaceUnclosed:
			code = diag.NorInterfaceUnclosed
		}
		d := diag.NewError(code, source.Pos{File: file, Line: be.Line}, be.Msg)
		if be.Hint != "" {
			d = d.WithNote(d.Primary, be.Hint)
		}
		return d
	}

	return diag.NewError(diag.UnknownCode, source.Pos{File: file}, err.Error())
}
