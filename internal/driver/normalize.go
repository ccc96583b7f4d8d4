package driver

import (
	"context"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"f90norm/internal/diag"
	"f90norm/internal/norm"
	"f90norm/internal/observ"
	"f90norm/internal/pipeline"
	"f90norm/internal/source"
)

// DefaultMaxDiagnostics bounds per-file diagnostic bags when the caller
// does not say otherwise.
const DefaultMaxDiagnostics = 256

// NormalizeOptions configures a NormalizePaths run.
type NormalizeOptions struct {
	Norm           norm.Options  // transform options; Reporter and Observer are owned by the driver
	Check          bool          // report would-change files, write nothing
	Stdout         io.Writer     // when set, results go here instead of back to the files
	Jobs           int           // parallel workers, <=0 means GOMAXPROCS
	MaxDiagnostics int           // per-file bag cap, <=0 means DefaultMaxDiagnostics
	Timings        bool          // append an OBS0001 timing diagnostic per file
	Sink           pipeline.Sink // progress events, may be nil
}

// NormalizeResult is the outcome for one input file.
type NormalizeResult struct {
	Path    string
	FileID  source.FileID
	Changed bool
	Bag     *diag.Bag
	Err     error // I/O failure; pipeline findings land in Bag instead
}

// NormalizePaths runs the normalizer over the given files in parallel.
// Pipeline findings and I/O failures are collected per file, so the
// returned error only reports a cancelled context; results[i] corresponds
// to paths[i].
func NormalizePaths(ctx context.Context, paths []string, opts NormalizeOptions) (*source.FileSet, []NormalizeResult, error) {
	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// FileSet не потокобезопасен: все файлы загружаем до запуска воркеров.
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		pipeline.Emit(opts.Sink, path, pipeline.StageLoad, pipeline.StatusRunning, nil, 0)
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			pipeline.Emit(opts.Sink, path, pipeline.StageLoad, pipeline.StatusFailed, err, 0)
			continue
		}
		fileIDs[path] = fileID
		pipeline.Emit(opts.Sink, path, pipeline.StageLoad, pipeline.StatusDone, nil, 0)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Stdout != nil {
		// вывод в один поток: порядок должен совпадать с порядком аргументов
		jobs = 1
	}

	results := make([]NormalizeResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				if loadErr, failed := loadErrors[path]; failed {
					bag := diag.NewBag(maxDiagnostics(opts.MaxDiagnostics))
					bag.Add(diag.NewError(diag.IOLoadFailed, source.Pos{},
						"failed to load file: "+loadErr.Error()))
					results[i] = NormalizeResult{Path: path, Bag: bag, Err: loadErr}
					return nil
				}

				// Индекс i уникален для каждой горутины, мьютекс не нужен.
				results[i] = normalizeOne(fileSet, fileIDs[path], path, opts)
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func normalizeOne(fileSet *source.FileSet, id source.FileID, path string, opts NormalizeOptions) NormalizeResult {
	bag := diag.NewBag(maxDiagnostics(opts.MaxDiagnostics))
	res := NormalizeResult{Path: path, FileID: id, Bag: bag}
	file := fileSet.Get(id)

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	bridge := &phaseBridge{
		sink:  opts.Sink,
		path:  path,
		timer: timer,
		idx:   -1,
		last:  pipeline.StageMerge,
	}

	nopts := opts.Norm
	nopts.Reporter = diag.BagReporter{Bag: bag}
	nopts.Observer = bridge.observe

	out, err := norm.Normalize(file, nopts)
	if err != nil {
		bag.Add(norm.Diagnose(id, err))
		bridge.fail(err)
		return res
	}
	res.Changed = out.Changed

	needWrite := !opts.Check && (out.Changed || opts.Stdout != nil)
	if !needWrite {
		pipeline.Emit(opts.Sink, path, pipeline.StageWrite, pipeline.StatusSkipped, nil, 0)
	} else {
		pipeline.Emit(opts.Sink, path, pipeline.StageWrite, pipeline.StatusRunning, nil, 0)
		if werr := writeOutput(path, out.Output, opts.Stdout, timer); werr != nil {
			res.Err = werr
			bag.Add(diag.NewError(diag.IOWriteFailed, source.Pos{File: id},
				"failed to write result: "+werr.Error()))
			pipeline.Emit(opts.Sink, path, pipeline.StageWrite, pipeline.StatusFailed, werr, 0)
		} else {
			pipeline.Emit(opts.Sink, path, pipeline.StageWrite, pipeline.StatusDone, nil, 0)
		}
	}

	if timer != nil {
		report := timer.Report()
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "file",
			Path:    path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res
}

// writeOutput writes content either to stdout or back over path.
// os.WriteFile truncates in place, so an existing file keeps its
// permission bits.
func writeOutput(path string, content []byte, stdout io.Writer, timer *observ.Timer) error {
	if timer != nil {
		idx := timer.Begin("write")
		defer timer.End(idx, "")
	}
	if stdout != nil {
		_, err := stdout.Write(content)
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// phaseBridge turns norm phase events into pipeline events and, when
// timings are on, observ phases. Phase names already match the pipeline
// stage vocabulary, so the conversion is a cast.
type phaseBridge struct {
	sink  pipeline.Sink
	path  string
	timer *observ.Timer
	idx   int            // current timer phase
	last  pipeline.Stage // most recently started stage, for failure reports
}

func (b *phaseBridge) observe(ev norm.PhaseEvent) {
	stage := pipeline.Stage(ev.Name)
	switch ev.Status {
	case norm.PhaseStart:
		b.last = stage
		if b.timer != nil {
			b.idx = b.timer.Begin(ev.Name)
		}
		pipeline.Emit(b.sink, b.path, stage, pipeline.StatusRunning, nil, 0)
	case norm.PhaseEnd:
		if b.timer != nil {
			b.timer.End(b.idx, ev.Note)
		}
		pipeline.Emit(b.sink, b.path, stage, pipeline.StatusDone, nil, ev.Elapsed)
	}
}

func (b *phaseBridge) fail(err error) {
	pipeline.Emit(b.sink, b.path, b.last, pipeline.StatusFailed, err, 0)
}

func maxDiagnostics(n int) int {
	if n <= 0 {
		return DefaultMaxDiagnostics
	}
	return n
}
