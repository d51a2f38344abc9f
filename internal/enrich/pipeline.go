package enrich

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

// DefaultSnapshotEvery is how many processed entries trigger an
// intermediate whole-file snapshot.
const DefaultSnapshotEvery = 10

// BackupSuffix is appended to the target path for the pre-run backup.
const BackupSuffix = ".enriched.bak"

// RunStats summarizes one pipeline run.
type RunStats struct {
	Entries int
	Updated int
}

// Pipeline drives enrichment over a whole bibliography file. It owns
// the in-memory document for the duration of the run and is the sole
// writer of the output file; concurrent runs against the same file or
// cache directory must be serialized by the operator.
type Pipeline struct {
	Merger        *Merger
	SnapshotEvery int
	Progress      io.Writer
}

// Run enriches every entry of the file at path in original order,
// snapshotting the whole file after every SnapshotEvery processed
// entries so a crash loses little work. Entries past the snapshot
// point stay verbatim from the original text until processed. On
// completion the pre-run content is saved to path+BackupSuffix and a
// cleanly reassembled file replaces the target.
func (p *Pipeline) Run(ctx context.Context, path string) (RunStats, error) {
	var stats RunStats

	original, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := bib.SplitDocument(string(original))
	stats.Entries = len(doc.Entries)

	every := p.SnapshotEvery
	if every <= 0 {
		every = DefaultSnapshotEvery
	}

	for i := range doc.Entries {
		p.progressf("\rProcessing %d/%d...", i+1, stats.Entries)

		out, changed, err := p.Merger.EnrichEntry(ctx, doc.Entries[i])
		if err != nil {
			return stats, err
		}
		doc.Entries[i] = out
		if changed {
			stats.Updated++
		}

		if (i+1)%every == 0 && i+1 < stats.Entries {
			if err := writeSnapshot(path, doc); err != nil {
				p.progressf("\nsnapshot failed: %v\n", err)
			}
		}
	}
	p.progressf("\n")

	if err := os.WriteFile(path+BackupSuffix, original, 0644); err != nil {
		return stats, fmt.Errorf("writing backup: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc.RenderClean()), 0644); err != nil {
		return stats, fmt.Errorf("writing %s: %w", path, err)
	}
	return stats, nil
}

// writeSnapshot persists the document mid-run with raw reassembly, so
// unprocessed entries keep their original bytes exactly.
func writeSnapshot(path string, doc *bib.Document) error {
	return os.WriteFile(path, []byte(doc.Reassemble()), 0644)
}

func (p *Pipeline) progressf(format string, args ...any) {
	if p.Progress == nil {
		return
	}
	fmt.Fprintf(p.Progress, format, args...)
}
