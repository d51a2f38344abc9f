package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

func init() {
	rootCmd.AddCommand(sortCmd)
}

var sortCmd = &cobra.Command{
	Use:   "sort [file]",
	Short: "Sort entries by year descending, then title",
	Long: `Sort reorders the bibliography by publication year, newest first,
with ties broken by title. Entry text is left untouched; only the
order changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSort,
}

func runSort(cmd *cobra.Command, args []string) error {
	path := bibArg(args)
	content, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	doc := bib.SplitDocument(string(content))
	bib.SortEntries(doc.Entries)

	if err := os.WriteFile(path+".bak", content, 0644); err != nil {
		exitWithError(ExitError, "writing backup: %v", err)
	}
	if err := os.WriteFile(path, []byte(doc.RenderClean()), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}

	fmt.Printf("Sorted %d entries in %s.\n", len(doc.Entries), path)
	return nil
}
