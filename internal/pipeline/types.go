// Package pipeline defines the progress vocabulary shared by the driver and
// the terminal UI: which stage a file is in and how it is going.
package pipeline

import "time"

// Stage describes one phase of the normalizer pipeline.
type Stage string

const (
	// StageLoad reads and decodes a source file.
	StageLoad Stage = "load"
	// StageMerge folds continuation lines into logical statements.
	StageMerge Stage = "merge"
	// StageSplit cuts statements at unquoted semicolons.
	StageSplit Stage = "split"
	// StageColonize inserts missing "::" separators.
	StageColonize Stage = "colonize"
	// StageExtract finds procedure boundaries.
	StageExtract Stage = "extract"
	// StageHoist reorders declarations ahead of executable code.
	StageHoist Stage = "hoist"
	// StageWrite persists or compares the result.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusPending indicates the file is waiting its turn.
	StatusPending Status = "pending"
	// StatusRunning indicates the stage is in flight.
	StatusRunning Status = "running"
	// StatusDone indicates the stage finished cleanly.
	StatusDone Status = "done"
	// StatusFailed indicates the stage errored out.
	StatusFailed Status = "failed"
	// StatusSkipped indicates the file needed no work.
	StatusSkipped Status = "skipped"
)

// Event reports progress for one file, or for the run as a whole when Path
// is empty.
type Event struct {
	Path    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}
