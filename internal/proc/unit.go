// Package proc extracts procedure boundaries from a logical-statement
// stream: functions, subroutines and main programs, with correct nesting.
package proc

import "fmt"

// Kind discriminates the unit kinds the extractor tracks.
type Kind uint8

const (
	KindSubroutine Kind = iota
	KindFunction
	KindProgram
)

func (k Kind) String() string {
	switch k {
	case KindSubroutine:
		return "subroutine"
	case KindFunction:
		return "function"
	case KindProgram:
		return "program"
	default:
		return "unknown"
	}
}

// Unit is one extracted program unit with its physical line span.
type Unit struct {
	Name  string `msgpack:"name"`
	Kind  Kind   `msgpack:"kind"`
	Start uint32 `msgpack:"start"` // header line, 1-based
	End   uint32 `msgpack:"end"`   // matching end line, 1-based
	Depth int    `msgpack:"depth"` // number of enclosing units
}

// Contains reports whether other lies strictly inside u's span.
func (u Unit) Contains(other Unit) bool {
	return u.Start < other.Start && other.End < u.End
}

// BoundaryKind discriminates the ways procedure bracketing can go wrong.
type BoundaryKind uint8

const (
	BoundaryUnclosed          BoundaryKind = iota // header with no matching end
	BoundaryEndMismatch                           // end closes a different kind or name
	BoundaryUnexpectedEnd                         // end with nothing open
	BoundaryInterfaceUnclosed                     // interface block left open
)

// BoundaryError reports unmatched or mismatched begin/end of a procedure or
// interface block. Line is the offending statement's line.
type BoundaryError struct {
	Kind BoundaryKind
	Line uint32
	Msg  string
	Hint string // optional "did you mean" detail for the diagnostics layer
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
