package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Flag entries with unbalanced braces",
	Long: `Check scans every entry for unbalanced brace delimiters, the usual
aftermath of a hand edit gone wrong. Problems are reported and the
file is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := bibArg(args)
	content, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	doc := bib.SplitDocument(string(content))
	problems := bib.CheckBalance(doc)
	if len(problems) == 0 {
		fmt.Printf("All %d entries look balanced.\n", len(doc.Entries))
		return nil
	}

	for _, p := range problems {
		fmt.Printf("Entry %s: %d opening vs %d closing braces\n", p.Key, p.Opened, p.Closed)
	}
	os.Exit(ExitDataError)
	return nil
}
