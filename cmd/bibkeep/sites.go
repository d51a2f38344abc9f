package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/bib"
	"github.com/dvrk-community/bibkeep/internal/config"
	"github.com/dvrk-community/bibkeep/internal/sites"
)

var sitesMappingPath string

func init() {
	sitesCmd.Flags().StringVar(&sitesMappingPath, "mapping", "", "Author-to-site mapping file (default author_sites.json next to the bib file)")
	rootCmd.AddCommand(sitesCmd)
}

var sitesCmd = &cobra.Command{
	Use:   "sites [file]",
	Short: "Recompute dvrk_site fields from the author mapping",
	Long: `Sites recomputes the dvrk_site field of every entry from the
author-to-site mapping: mapping-managed sites are dropped and re-added
for each mapped author found on the entry, while hand-set sites
survive. The file is then rewritten in the standard layout, sorted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSites,
}

func runSites(cmd *cobra.Command, args []string) error {
	path := bibArg(args)

	mappingPath := sitesMappingPath
	if mappingPath == "" {
		mappingPath = config.MappingPath(path)
	}
	mapping, err := sites.LoadMapping(mappingPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	doc := bib.SplitDocument(string(content))
	updated := 0
	for i, raw := range doc.Entries {
		entry, err := bib.ParseEntry(raw)
		if err != nil {
			exitWithError(ExitDataError, "parsing entry %d: %v", i+1, err)
		}
		if sites.Apply(entry, mapping) {
			updated++
		}
		doc.Entries[i] = bib.FormatEntry(entry)
	}
	bib.SortEntries(doc.Entries)

	if err := os.WriteFile(path, []byte(doc.RenderClean()), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}

	if updated > 0 {
		fmt.Printf("Updated sites on %d entries in %s.\n", updated, path)
	} else {
		fmt.Printf("No site updates needed in %s.\n", path)
	}
	return nil
}
