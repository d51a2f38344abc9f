package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/config"
	"github.com/dvrk-community/bibkeep/internal/discover"
	"github.com/dvrk-community/bibkeep/internal/s2"
	"github.com/dvrk-community/bibkeep/internal/store"
)

var (
	discoverQueries  []string
	discoverFrom     int
	discoverTo       int
	discoverNoBrowse bool
)

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverQueries, "query", []string{"dVRK", "da Vinci Research Kit"}, "Search queries")
	discoverCmd.Flags().IntVar(&discoverFrom, "from", 2021, "First publication year to search")
	discoverCmd.Flags().IntVar(&discoverTo, "to", 2025, "Last publication year to search")
	discoverCmd.Flags().BoolVar(&discoverNoBrowse, "no-browser", false, "Skip opening candidate URLs in the browser")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover [file]",
	Short: "Find new papers and review them interactively",
	Long: `Discover searches Semantic Scholar, and IEEE Xplore when an API key
is configured, for papers matching the community queries. Candidates
already in the bibliography or previously declined are filtered out;
the rest go through an interactive review where each accepted paper is
appended to the file and each declined one is remembered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	path := bibArg(args)

	idx, err := discover.LoadBibIndex(path)
	if err != nil {
		exitWithError(ExitError, "indexing %s: %v", path, err)
	}

	if err := config.EnsureWorkspace(path); err != nil {
		exitWithError(ExitError, "creating workspace: %v", err)
	}
	rejected, err := store.OpenRejected(config.RejectedPath(path))
	if err != nil {
		exitWithError(ExitError, "opening rejection store: %v", err)
	}
	defer rejected.Close()

	rejectedIDs, err := rejected.Identifiers()
	if err != nil {
		exitWithError(ExitError, "loading rejections: %v", err)
	}
	fmt.Printf("Loaded %d known DOIs, %d known titles, %d rejected items.\n",
		len(idx.DOIs), len(idx.Titles), len(rejectedIDs))

	var ieee *discover.IEEEClient
	if key := config.GetIEEEAPIKey(); key != "" {
		ieee = discover.NewIEEEClient(key)
	} else {
		fmt.Println("Skipping IEEE Xplore search: no API key configured.")
	}

	searcher := discover.NewSearcher(s2.NewClient(s2.WithAPIKey(config.GetS2APIKey())), ieee)
	searcher.Log = os.Stdout

	found, err := searcher.Search(cmd.Context(), discoverQueries, discoverFrom, discoverTo)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	candidates := discover.Filter(found, idx, rejectedIDs)
	if len(candidates) == 0 {
		fmt.Println("No new papers found.")
		return nil
	}
	fmt.Printf("Found %d potential new papers.\n", len(candidates))

	return review(candidates, path, rejected)
}

// review walks the candidates one by one, asking the operator to
// accept, decline, skip or quit.
func review(candidates []discover.Candidate, bibPath string, rejected *store.Rejected) error {
	reader := bufio.NewReader(os.Stdin)

	for i, c := range candidates {
		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Printf("Paper %d/%d\n", i+1, len(candidates))
		fmt.Printf("Title: %s\n", c.Title)
		fmt.Printf("Authors: %s\n", formatAuthors(c.Authors))
		fmt.Printf("Year: %d\n", c.Year)
		fmt.Printf("Source: %s\n", c.Source)
		fmt.Printf("URL: %s\n", orNA(c.URL))

		if c.URL != "" && !discoverNoBrowse {
			fmt.Println("Opening in browser...")
			if err := openURL(c.URL); err != nil {
				fmt.Fprintf(os.Stderr, "could not open browser: %v\n", err)
			}
		}
		if c.BibTeX == "" {
			fmt.Println("Warning: BibTeX NOT available.")
		}

		for {
			fmt.Print("Add this paper? ([y]es/[n]o/[s]kip/[q]uit): ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil
			}
			choice := strings.ToLower(strings.TrimSpace(line))

			done := false
			switch choice {
			case "y", "yes":
				if err := appendEntry(bibPath, c); err != nil {
					fmt.Fprintf(os.Stderr, "failed to add: %v\n", err)
				} else {
					fmt.Printf("Added %s to %s\n", c.Title, bibPath)
				}
				done = true
			case "n", "no":
				if err := rejected.Add(c.DOI, c.Title); err != nil {
					fmt.Fprintf(os.Stderr, "failed to record rejection: %v\n", err)
				} else {
					fmt.Println("Paper rejected.")
				}
				done = true
			case "s", "skip":
				fmt.Println("Skipped.")
				done = true
			case "q", "quit":
				fmt.Println("Exiting review.")
				return nil
			default:
				fmt.Println("Invalid choice.")
			}
			if done {
				break
			}
		}
	}
	return nil
}

func appendEntry(bibPath string, c discover.Candidate) error {
	if c.BibTeX == "" {
		return fmt.Errorf("no BibTeX available")
	}
	f, err := os.OpenFile(bibPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\n%s\n", strings.TrimSpace(c.BibTeX))
	return err
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "N/A"
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// openURL opens a URL with the configured browser, falling back to the
// platform opener.
func openURL(url string) error {
	cfg, _ := config.LoadGlobalConfig()
	if cfg != nil && cfg.Browser != "" {
		return exec.Command(cfg.Browser, url).Start()
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
