package norm

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus uint8

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary inside Normalize. Phase names match
// the pipeline stage vocabulary: merge, split, colonize, extract, hoist.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration // zero on start
	Note    string        // short detail like "stmts=12", set on end
}

// PhaseObserver receives phase events emitted during Normalize.
// A failed phase emits no end event; the returned error identifies it.
type PhaseObserver func(PhaseEvent)
