package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"f90norm/internal/diagfmt"
	"f90norm/internal/driver"
	"f90norm/internal/project"
)

var proceduresCmd = &cobra.Command{
	Use:   "procedures [flags] <path> [path...]",
	Short: "List procedure boundaries in Fortran source files",
	Long: `Procedures merges continuations, splits statements and reports every
function, subroutine and program unit with its line span and nesting depth.
Results are cached by content hash; unchanged files are served from disk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcedures,
}

func init() {
	proceduresCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	proceduresCmd.Flags().Bool("no-cache", false, "ignore and do not update the procedure-index cache")
}

func runProcedures(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("procedures: unsupported output format %q", format)
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	cfg, _, err := project.LoadFromDir(".")
	if err != nil {
		return err
	}
	files, err := driver.CollectSourceFiles(args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("procedures: no Fortran sources found under the given paths")
	}

	opts := driver.ProcedureOptions{
		MaxDiagnostics: maxDiagnostics,
		Timings:        timings,
	}
	if !noCache {
		cache, err := driver.OpenDiskCache()
		if err != nil {
			// без кэша жить можно, молча пересчитываем
			cache = nil
		}
		opts.Cache = cache
	}

	fileSet, results, err := driver.ProcedurePaths(cmd.Context(), files, opts)
	if err != nil {
		return err
	}

	var hasErrors bool
	for _, res := range results {
		if res.Bag == nil {
			continue
		}
		res.Bag.Sort()
		res.Bag.Dedup()
		if res.Err != nil || res.Bag.HasErrors() {
			hasErrors = true
		}
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, res.Bag, fileSet, diagfmt.DefaultPrettyOpts())
		}
	}

	switch format {
	case "pretty":
		renderProceduresPretty(results)
	case "json":
		if err := renderProceduresJSON(results); err != nil {
			return err
		}
	}

	if hasErrors {
		return fmt.Errorf("procedures: failed to index some files")
	}
	return nil
}

var (
	procPathColor = color.New(color.Bold)
	procKindColor = color.New(color.FgCyan)
	procSpanColor = color.New(color.Faint)
)

func renderProceduresPretty(results []driver.ProcedureResult) {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		header := res.Path
		if res.FromCache {
			header += " (cached)"
		}
		fmt.Fprintln(os.Stdout, procPathColor.Sprint(header))
		for _, unit := range res.Units {
			name := unit.Name
			if name == "" {
				name = "<anonymous>"
			}
			fmt.Fprintf(os.Stdout, "  %s%s %s %s\n",
				strings.Repeat("  ", unit.Depth),
				procKindColor.Sprint(unit.Kind.String()),
				name,
				procSpanColor.Sprintf("[%d-%d]", unit.Start, unit.End))
		}
		if len(res.Units) == 0 {
			fmt.Fprintln(os.Stdout, "  (no procedures)")
		}
	}
}

func renderProceduresJSON(results []driver.ProcedureResult) error {
	type jsonUnit struct {
		Name  string `json:"name,omitempty"`
		Kind  string `json:"kind"`
		Start uint32 `json:"start"`
		End   uint32 `json:"end"`
		Depth int    `json:"depth"`
	}
	type jsonResult struct {
		Path      string     `json:"path"`
		FromCache bool       `json:"from_cache"`
		Error     string     `json:"error,omitempty"`
		Units     []jsonUnit `json:"units"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, FromCache: res.FromCache, Units: make([]jsonUnit, 0, len(res.Units))}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		for _, unit := range res.Units {
			jr.Units = append(jr.Units, jsonUnit{
				Name:  unit.Name,
				Kind:  unit.Kind.String(),
				Start: unit.Start,
				End:   unit.End,
				Depth: unit.Depth,
			})
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
