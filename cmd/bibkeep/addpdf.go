package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvrk-community/bibkeep/internal/bib"
	"github.com/dvrk-community/bibkeep/internal/pdf"
)

func init() {
	rootCmd.AddCommand(addPDFCmd)
}

var addPDFCmd = &cobra.Command{
	Use:   "add-pdf <pdf> [file]",
	Short: "Attach a local PDF to its bibliography entry",
	Long: `Add-pdf reads the DOI printed on the opening pages of a PDF, finds
the bibliography entry carrying that DOI and records the PDF path in
its pdf field. When the PDF has no recognizable DOI, the first page's
leading line is matched against entry titles instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAddPDF,
}

func runAddPDF(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	bibPath := bibArg(args[1:])

	content, err := os.ReadFile(bibPath)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", bibPath, err)
	}

	doi, err := pdf.ExtractDOI(pdfPath)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", pdfPath, err)
	}

	var title string
	if doi == "" {
		title, _ = pdf.GuessTitle(pdfPath)
		if title == "" {
			exitWithError(ExitDataError, "no DOI or usable title found in %s", pdfPath)
		}
		fmt.Printf("No DOI in %s; matching on title %q.\n", pdfPath, title)
	}

	doc := bib.SplitDocument(string(content))
	idx := matchEntry(doc.Entries, doi, title)
	if idx == -1 {
		exitWithError(ExitDataError, "no entry matches %s", pdfPath)
	}

	entry, err := bib.ParseEntry(doc.Entries[idx])
	if err != nil {
		exitWithError(ExitDataError, "parsing entry %s: %v", bib.ExtractKey(doc.Entries[idx]), err)
	}
	entry.Set("pdf", pdfPath)
	doc.Entries[idx] = bib.FormatEntry(entry)

	if err := os.WriteFile(bibPath, []byte(doc.RenderClean()), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", bibPath, err)
	}

	fmt.Printf("Attached %s to entry %s.\n", pdfPath, entry.Key)
	return nil
}

// matchEntry finds the entry with the given DOI, or the given title
// when no DOI is available. Returns -1 when nothing matches.
func matchEntry(entries []string, doi, title string) int {
	for i, e := range entries {
		if doi != "" {
			if bib.NormalizeDOI(bib.ExtractDOI(e)) == bib.NormalizeDOI(doi) {
				return i
			}
			continue
		}
		if bib.NormalizeTitle(bib.ExtractTitle(e)) == bib.NormalizeTitle(title) {
			return i
		}
	}
	return -1
}
