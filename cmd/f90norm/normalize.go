package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"f90norm/internal/diagfmt"
	"f90norm/internal/driver"
	"f90norm/internal/norm"
	"f90norm/internal/project"
	"f90norm/internal/source"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] <path> [path...]",
	Short: "Normalize free-form Fortran source files",
	Long: `Normalize runs the full pipeline over each file: continuation merging,
semicolon splitting, :: insertion, procedure extraction and declaration
hoisting. Directories are walked for the configured source extensions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().Bool("check", false, "report files that would change, write nothing")
	normalizeCmd.Flags().String("format", "text", "output format (text|json)")
	normalizeCmd.Flags().Bool("stdout", false, "print normalized source to stdout instead of rewriting files")
	normalizeCmd.Flags().Bool("implicit-none", false, "insert \"implicit none\" where a unit lacks it")
	normalizeCmd.Flags().Bool("merge-decls", false, "consolidate runs of same-prefix declarations")
	normalizeCmd.Flags().Int("width", 0, "wrap width for merged declarations (default from config, else 80)")
	normalizeCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	normalizeCmd.Flags().String("ui", "auto", "interactive progress view (auto|on|off)")
	normalizeCmd.Flags().StringArray("exclude", nil, "glob of files to skip, relative to each walked directory (repeatable)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}

	if writeToStdout && check {
		return fmt.Errorf("normalize: --stdout cannot be used with --check")
	}
	if writeToStdout && outputFormat != "text" {
		return fmt.Errorf("normalize: --stdout is only supported with text output")
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiFlag)
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
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
	normOpts, err := overlayNormalizeConfig(cmd, &cfg)
	if err != nil {
		return err
	}

	files, err := driver.CollectSourceFiles(args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("normalize: no Fortran sources found under the given paths")
	}
	if writeToStdout && len(files) != 1 {
		return fmt.Errorf("normalize: --stdout expects exactly one file, got %d", len(files))
	}

	opts := driver.NormalizeOptions{
		Norm:           normOpts,
		Check:          check,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Timings:        timings,
	}
	if writeToStdout {
		opts.Stdout = os.Stdout
	}

	useTUI := mode.wantTUI() && len(files) > 1 &&
		outputFormat == "text" && !writeToStdout && !quiet

	var fileSet *source.FileSet
	var results []driver.NormalizeResult
	if useTUI {
		fileSet, results, err = runNormalizeWithUI(cmd.Context(), normalizeTitle(check), files, opts)
	} else {
		fileSet, results, err = driver.NormalizePaths(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	sortBags(results)

	var hasErrors bool
	var hasChanges bool

	switch outputFormat {
	case "text":
		reportDiagnostics(results, fileSet)
		renderNormalizeText(results, check, quiet, writeToStdout, &hasErrors, &hasChanges)
	case "json":
		if err := renderNormalizeJSON(results, fileSet, check); err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil || res.Bag.HasErrors() {
				hasErrors = true
			}
			if res.Changed {
				hasChanges = true
			}
		}
	default:
		return fmt.Errorf("normalize: unsupported output format %q", outputFormat)
	}

	if hasErrors {
		return fmt.Errorf("normalize: failed to normalize some files")
	}
	if check && hasChanges {
		return fmt.Errorf("normalize: changes required")
	}
	return nil
}

// overlayNormalizeConfig merges f90norm.toml values with the normalize
// flags; an explicitly set flag wins over the file.
func overlayNormalizeConfig(cmd *cobra.Command, cfg *project.Config) (norm.Options, error) {
	opts := norm.Options{
		ImplicitNone: cfg.Normalize.ImplicitNone,
		MergeDecls:   cfg.Normalize.MergeDecls,
		Width:        cfg.Normalize.Width,
	}

	if cmd.Flags().Changed("implicit-none") {
		v, err := cmd.Flags().GetBool("implicit-none")
		if err != nil {
			return norm.Options{}, err
		}
		opts.ImplicitNone = v
	}
	if cmd.Flags().Changed("merge-decls") {
		v, err := cmd.Flags().GetBool("merge-decls")
		if err != nil {
			return norm.Options{}, err
		}
		opts.MergeDecls = v
	}
	if cmd.Flags().Changed("width") {
		v, err := cmd.Flags().GetInt("width")
		if err != nil {
			return norm.Options{}, err
		}
		if v <= 0 {
			return norm.Options{}, fmt.Errorf("normalize: --width must be positive, got %d", v)
		}
		opts.Width = v
	}

	excludes, err := cmd.Flags().GetStringArray("exclude")
	if err != nil {
		return norm.Options{}, err
	}
	cfg.Files.Exclude = append(cfg.Files.Exclude, excludes...)

	return opts, nil
}

func normalizeTitle(check bool) string {
	if check {
		return "checking Fortran sources"
	}
	return "normalizing Fortran sources"
}

// sortBags puts every result bag into its stable render order.
func sortBags(results []driver.NormalizeResult) {
	for _, res := range results {
		if res.Bag == nil {
			continue
		}
		res.Bag.Sort()
		res.Bag.Dedup()
	}
}

// reportDiagnostics prints each file's collected findings to stderr.
func reportDiagnostics(results []driver.NormalizeResult, fileSet *source.FileSet) {
	for _, res := range results {
		if res.Bag == nil || res.Bag.Len() == 0 {
			continue
		}
		diagfmt.Pretty(os.Stderr, res.Bag, fileSet, diagfmt.DefaultPrettyOpts())
	}
}

func renderNormalizeText(results []driver.NormalizeResult, check, quiet, stdout bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil || res.Bag.HasErrors() {
			*hasErrors = true
			continue
		}
		if stdout {
			// содержимое уже ушло в stdout из драйвера
			continue
		}
		if !res.Changed {
			continue
		}
		*hasChanges = true
		if quiet {
			continue
		}
		if check {
			fmt.Fprintln(os.Stdout, res.Path)
		} else {
			fmt.Fprintf(os.Stdout, "normalized %s\n", res.Path)
		}
	}
}

func renderNormalizeJSON(results []driver.NormalizeResult, fileSet *source.FileSet, check bool) error {
	type jsonResult struct {
		Path        string                   `json:"path"`
		Changed     bool                     `json:"changed"`
		CheckRun    bool                     `json:"check"`
		Error       string                   `json:"error,omitempty"`
		Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, CheckRun: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		if res.Bag != nil && res.Bag.Len() > 0 {
			jr.Diagnostics = diagfmt.BuildOutput(res.Bag, fileSet).Diagnostics
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
