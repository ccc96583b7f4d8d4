package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"f90norm/internal/driver"
	"f90norm/internal/pipeline"
	"f90norm/internal/source"
	"f90norm/internal/ui"
)

// uiMode is the parsed --ui flag: every value except the explicit on/off
// leaves the decision to the terminal check.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiForced
	uiSuppressed
)

func parseUIMode(value string) (uiMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return uiAuto, nil
	case "on":
		return uiForced, nil
	case "off":
		return uiSuppressed, nil
	}
	return uiAuto, fmt.Errorf("--ui must be auto, on or off, got %q", value)
}

// wantTUI decides whether the progress view runs. Forcing it on wins even
// when stdout is a pipe; bubbletea copes with that.
func (m uiMode) wantTUI() bool {
	switch m {
	case uiForced:
		return true
	case uiSuppressed:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type normalizeOutcome struct {
	fileSet *source.FileSet
	results []driver.NormalizeResult
	err     error
}

// runNormalizeWithUI runs the driver in a goroutine and feeds its progress
// events into the bubbletea view until the event channel closes.
func runNormalizeWithUI(ctx context.Context, title string, files []string, opts driver.NormalizeOptions) (*source.FileSet, []driver.NormalizeResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan normalizeOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		fileSet, results, err := driver.NormalizePaths(ctx, files, optsCopy)
		outcomeCh <- normalizeOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
