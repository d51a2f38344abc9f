package main

import (
	"fmt"
	"os"

	"github.com/dvrk-community/bibkeep/internal/config"
)

// DefaultBibFile is used when a command gets no positional argument.
const DefaultBibFile = "publications.bib"

// bibArg resolves the bibliography path from the positional arguments.
func bibArg(args []string) string {
	if len(args) > 0 {
		return config.ExpandPath(args[0])
	}
	return DefaultBibFile
}

// exitWithError writes an error to stderr and exits with the code.
func exitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}
