package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"f90norm/internal/diag"
	"f90norm/internal/norm"
	"f90norm/internal/observ"
	"f90norm/internal/proc"
	"f90norm/internal/source"
	"f90norm/internal/stmt"
)

// ProcedureOptions configures a ProcedurePaths run.
type ProcedureOptions struct {
	Jobs           int
	MaxDiagnostics int
	Cache          *DiskCache // nil disables caching
	Timings        bool
}

// ProcedureResult carries the procedure index for one file.
type ProcedureResult struct {
	Path      string
	FileID    source.FileID
	Units     []proc.Unit
	Bag       *diag.Bag
	FromCache bool
	Err       error
}

// ProcedurePaths extracts procedure boundaries from the given files in
// parallel, consulting the disk cache by content hash before running the
// merge/split/extract passes.
func ProcedurePaths(ctx context.Context, paths []string, opts ProcedureOptions) (*source.FileSet, []ProcedureResult, error) {
	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// FileSet не потокобезопасен: все файлы загружаем до запуска воркеров.
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]ProcedureResult, len(paths))

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

				bag := diag.NewBag(maxDiagnostics(opts.MaxDiagnostics))

				if loadErr, failed := loadErrors[path]; failed {
					bag.Add(diag.NewError(diag.IOLoadFailed, source.Pos{},
						"failed to load file: "+loadErr.Error()))
					results[i] = ProcedureResult{Path: path, Bag: bag, Err: loadErr}
					return nil
				}

				results[i] = extractOne(fileSet, fileIDs[path], path, bag, opts)
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func extractOne(fileSet *source.FileSet, id source.FileID, path string, bag *diag.Bag, opts ProcedureOptions) ProcedureResult {
	res := ProcedureResult{Path: path, FileID: id, Bag: bag}
	file := fileSet.Get(id)

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	begin := func(name string) int {
		if timer == nil {
			return -1
		}
		return timer.Begin(name)
	}
	end := func(idx int, note string) {
		if timer == nil || idx < 0 {
			return
		}
		timer.End(idx, note)
	}

	if opts.Cache != nil {
		cacheIdx := begin("cache")
		units, hit, err := opts.Cache.Get(file.Hash)
		note := "miss"
		if hit {
			note = "hit"
		}
		end(cacheIdx, note)
		// повреждённая запись не повод падать: пересчитаем и перезапишем
		if err == nil && hit {
			res.Units = units
			res.FromCache = true
			finishProcTimings(bag, timer, path)
			return res
		}
	}

	mergeIdx := begin("merge")
	stmts, err := stmt.MergeContinuations(file.Lines)
	end(mergeIdx, "")
	if err != nil {
		bag.Add(norm.Diagnose(id, err))
		return res
	}

	splitIdx := begin("split")
	var split []stmt.Statement
	for _, st := range stmts {
		split = append(split, stmt.Split(st)...)
	}
	end(splitIdx, fmt.Sprintf("stmts=%d", len(split)))

	extractIdx := begin("extract")
	units, err := proc.Extract(split)
	extractNote := ""
	if timer != nil && err == nil {
		extractNote = fmt.Sprintf("units=%d", len(units))
	}
	end(extractIdx, extractNote)
	if err != nil {
		bag.Add(norm.Diagnose(id, err))
		return res
	}
	res.Units = units

	if opts.Cache != nil {
		// кэш — best effort: неудачная запись не мешает результату
		_ = opts.Cache.Put(file.Hash, units)
	}

	finishProcTimings(bag, timer, path)
	return res
}

func finishProcTimings(bag *diag.Bag, timer *observ.Timer, path string) {
	if timer == nil {
		return
	}
	report := timer.Report()
	appendTimingDiagnostic(bag, timingPayload{
		Kind:    "procedures",
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	})
}
