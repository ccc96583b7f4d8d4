package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"f90norm/internal/objsym"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] <object> [object...]",
	Short: "List Fortran symbols defined in object files",
	Long: `Symbols runs nm over the given objects, archives or executables and
prints the defined symbols with their Fortran names recovered from
gfortran's mangling. With --duplicates it reports names defined in more
than one object, the usual symptom of a copy-pasted routine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().Bool("duplicates", false, "report only symbols defined in several objects")
	symbolsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	symbolsCmd.Flags().String("nm", "nm", "nm binary to run")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	duplicates, err := cmd.Flags().GetBool("duplicates")
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("symbols: unsupported output format %q", format)
	}

	nmPath, err := cmd.Flags().GetString("nm")
	if err != nil {
		return err
	}

	var syms []objsym.Symbol
	for _, object := range args {
		listed, err := listObject(cmd, nmPath, object)
		if err != nil {
			return fmt.Errorf("symbols: %s: %w", object, err)
		}
		syms = append(syms, listed...)
	}

	if duplicates {
		groups := objsym.Duplicates(syms)
		if format == "json" {
			return renderDuplicatesJSON(groups)
		}
		renderDuplicatesPretty(groups)
		if len(groups) > 0 {
			return fmt.Errorf("symbols: %d duplicated symbol(s)", len(groups))
		}
		return nil
	}

	if format == "json" {
		return renderSymbolsJSON(syms)
	}
	renderSymbolsPretty(syms)
	return nil
}

// listObject shells out to nm and parses its listing. The -A flag makes nm
// prefix archive members itself, so one call covers .o, .a and executables.
func listObject(cmd *cobra.Command, nmPath, object string) ([]objsym.Symbol, error) {
	nm := exec.CommandContext(cmd.Context(), nmPath, "--defined-only", "-A", object)
	var stdout, stderr bytes.Buffer
	nm.Stdout = &stdout
	nm.Stderr = &stderr

	if err := nm.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %s", nmPath, detail)
		}
		return nil, fmt.Errorf("%s: %w", nmPath, err)
	}
	return objsym.Parse(&stdout, object)
}

var (
	symObjectColor = color.New(color.Bold)
	symNameColor   = color.New(color.FgCyan)
	symRawColor    = color.New(color.Faint)
)

func renderSymbolsPretty(syms []objsym.Symbol) {
	for _, bucket := range objsym.ByObject(syms) {
		fmt.Fprintln(os.Stdout, symObjectColor.Sprint(bucket.Object))
		for _, s := range bucket.Symbols {
			fmt.Fprintf(os.Stdout, "  %c %s %s\n",
				s.Type, symNameColor.Sprint(s.Name), symRawColor.Sprintf("(%s)", s.Raw))
		}
	}
}

func renderSymbolsJSON(syms []objsym.Symbol) error {
	type jsonSymbol struct {
		Object  string `json:"object"`
		Address string `json:"address"`
		Type    string `json:"type"`
		Raw     string `json:"raw"`
		Name    string `json:"name"`
	}

	payload := make([]jsonSymbol, 0, len(syms))
	for _, s := range syms {
		payload = append(payload, jsonSymbol{
			Object:  s.Object,
			Address: s.Address,
			Type:    string(s.Type),
			Raw:     s.Raw,
			Name:    s.Name,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func renderDuplicatesPretty(groups []objsym.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(os.Stdout, "no duplicated symbols")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(os.Stdout, "%s defined in %d objects:\n", symNameColor.Sprint(g.Name), len(g.Objects))
		for _, obj := range g.Objects {
			fmt.Fprintf(os.Stdout, "  %s\n", obj)
		}
	}
}

func renderDuplicatesJSON(groups []objsym.Group) error {
	type jsonGroup struct {
		Name    string   `json:"name"`
		Objects []string `json:"objects"`
	}

	payload := make([]jsonGroup, 0, len(groups))
	for _, g := range groups {
		payload = append(payload, jsonGroup{Name: g.Name, Objects: g.Objects})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
