package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate-urls [file]",
	Short: "Move IEEE Xplore links from url to the ieeexplore field",
	Long: `Migrate-urls renames the url field to ieeexplore on every line where
the value points at ieeexplore.ieee.org, freeing url for open-access
links. A copy of the original file is kept with a .migrated.bak
suffix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

var (
	ieeeURLLineRegex = regexp.MustCompile(`(?i)^\s*url\s*=\s*[{"].*?ieeexplore\.ieee\.org.*?[}"]`)
	urlFieldRegex    = regexp.MustCompile(`(?i)^\s*url\s*=`)
)

func runMigrate(cmd *cobra.Command, args []string) error {
	path := bibArg(args)
	content, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	lines := strings.Split(string(content), "\n")
	migrated := 0
	for i, line := range lines {
		if ieeeURLLineRegex.MatchString(line) {
			lines[i] = urlFieldRegex.ReplaceAllString(line, "  ieeexplore =")
			migrated++
		}
	}

	backup := path + ".migrated.bak"
	if err := os.WriteFile(backup, content, 0644); err != nil {
		exitWithError(ExitError, "writing backup: %v", err)
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}

	fmt.Printf("Migrated %d URLs to the ieeexplore field. Backup at %s.\n", migrated, backup)
	return nil
}
