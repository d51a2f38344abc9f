package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [file]",
	Short: "Normalize, reorder and sort the whole bibliography",
	Long: `Cleanup rewrites every entry in a standard layout: fields in a fixed
order with two-space indent and trailing commas, values flattened onto
one line, and the legacy dvrk_sites field renamed to dvrk_site.
Entries are then sorted by year descending, then title.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	path := bibArg(args)
	content, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	doc := bib.SplitDocument(string(content))
	for i, raw := range doc.Entries {
		entry, err := bib.ParseEntry(raw)
		if err != nil {
			exitWithError(ExitDataError, "parsing entry %d: %v", i+1, err)
		}
		entry.Rename("dvrk_sites", "dvrk_site")
		for j, f := range entry.Fields {
			entry.Fields[j].Value = bib.NormalizeValue(f.Value)
		}
		doc.Entries[i] = bib.FormatEntry(entry)
	}
	bib.SortEntries(doc.Entries)

	if err := os.WriteFile(path, []byte(doc.RenderClean()), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}

	fmt.Printf("Cleaned up and sorted %d entries in %s.\n", len(doc.Entries), path)
	return nil
}
