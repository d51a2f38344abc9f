package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/cache"
	"github.com/dvrk-community/bibkeep/internal/config"
	"github.com/dvrk-community/bibkeep/internal/enrich"
	"github.com/dvrk-community/bibkeep/internal/s2"
)

var (
	enrichCacheAge  int
	enrichCacheDir  string
	enrichReprocess bool
)

func init() {
	// Load .env file if present (for S2_API_KEY)
	_ = godotenv.Load()

	enrichCmd.Flags().IntVar(&enrichCacheAge, "cache-age", 180, "Days a cached lookup stays fresh (0 forces refetch)")
	enrichCmd.Flags().StringVar(&enrichCacheDir, "cache-dir", "", "Cache directory (default .bibkeep/cache next to the bib file)")
	enrichCmd.Flags().BoolVar(&enrichReprocess, "reprocess", false, "Re-merge from cached lookups without touching the network")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [file]",
	Short: "Fill in missing DOIs, abstracts and links from Semantic Scholar",
	Long: `Enrich walks every entry of the bibliography and fills in missing
doi, abstract, semanticscholar, arxiv and url fields from the Semantic
Scholar Graph API. Entries are matched by DOI when one is present, and
by a scored title search otherwise.

Progress is snapshotted to the file as the run goes, and the pre-run
content is kept next to it with a .enriched.bak suffix. With
--reprocess no network requests are made; entries are re-merged from
whatever the cache already holds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	path := bibArg(args)
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitError, "%s not found", path)
	}

	cacheDir := enrichCacheDir
	if cacheDir == "" {
		if err := config.EnsureWorkspace(path); err != nil {
			exitWithError(ExitError, "creating workspace: %v", err)
		}
		cacheDir = config.CachePath(path)
	}

	lookup := &enrich.Lookup{
		Cache:     cache.New(cacheDir, time.Duration(enrichCacheAge)*24*time.Hour),
		Reprocess: enrichReprocess,
		Log:       os.Stderr,
	}
	if !enrichReprocess {
		lookup.Client = s2.NewClient(s2.WithAPIKey(config.GetS2APIKey()))
	}

	pipeline := &enrich.Pipeline{
		Merger:   &enrich.Merger{Lookup: lookup},
		Progress: os.Stdout,
	}

	stats, err := pipeline.Run(cmd.Context(), path)
	if err != nil {
		exitWithError(ExitError, "enriching %s: %v", path, err)
	}

	fmt.Printf("Updated %d of %d entries in %s.\n", stats.Updated, stats.Entries, path)
	return nil
}
