package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"f90norm/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the procedure-index cache",
	Long:  "Remove the on-disk procedure-index cache; the next procedures run rebuilds it from scratch.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cache, err := driver.OpenDiskCache()
	if err != nil {
		return fmt.Errorf("clean: failed to locate the cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("clean: failed to remove %q: %w", cache.Dir(), err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(os.Stdout, "removed %s\n", cache.Dir())
	}
	return nil
}
