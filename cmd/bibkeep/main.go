// Package main provides the bibkeep CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibkeep",
	Short: "Maintain a shared BibTeX publications list",
	Long: `bibkeep maintains a community publications BibTeX file.

Core features:
  - Enrich entries with DOIs, abstracts and links from Semantic Scholar
  - Discover new papers from Semantic Scholar and IEEE Xplore
  - Keep site attributions in sync with an author mapping
  - Sort, clean up and syntax-check the bibliography

Lookups are cached on disk next to the bibliography so repeated runs
stay cheap and reviews can happen offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}
