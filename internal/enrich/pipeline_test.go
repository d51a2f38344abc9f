package enrich

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvrk-community/bibkeep/internal/bib"
	"github.com/dvrk-community/bibkeep/internal/cache"
)

// writeBibFile creates a bibliography with n minimal entries missing
// everything but a title.
func writeBibFile(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("% test bibliography\n\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "@article{Paper%02d,\n  title = {Test Paper %02d},\n  year = {2023},\n}\n\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "publications.bib")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func searchHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		fmt.Fprintf(w, `{"total": 1, "data": [{
			"paperId": "p",
			"title": %q,
			"abstract": "Abstract text.",
			"url": "https://www.semanticscholar.org/paper/p",
			"externalIds": {"DOI": "10.1000/t"},
			"publicationTypes": ["JournalArticle"]
		}]}`, query)
	}
}

func TestPipeline_Run(t *testing.T) {
	path := writeBibFile(t, 3)
	lookup, _ := newTestLookup(t, searchHandler(t))
	p := &Pipeline{Merger: &Merger{Lookup: lookup}}

	stats, err := p.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stats.Entries != 3 || stats.Updated != 3 {
		t.Errorf("stats = %+v, want 3 entries all updated", stats)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}
	content := string(out)

	if !strings.Contains(content, "% test bibliography") {
		t.Error("preamble dropped")
	}
	if got := strings.Count(content, "@article"); got != 3 {
		t.Errorf("expected every entry exactly once, found %d", got)
	}
	if strings.Count(content, "abstract = {Abstract text.}") != 3 {
		t.Error("entries not enriched")
	}

	// Entries are separated by exactly one blank line.
	if strings.Contains(content, "\n\n\n") {
		t.Errorf("sloppy separation:\n%s", content)
	}
}

func TestPipeline_WritesBackup(t *testing.T) {
	path := writeBibFile(t, 2)
	original, _ := os.ReadFile(path)

	lookup, _ := newTestLookup(t, searchHandler(t))
	p := &Pipeline{Merger: &Merger{Lookup: lookup}}
	if _, err := p.Run(context.Background(), path); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	backup, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if string(backup) != string(original) {
		t.Error("backup must hold the pre-run content")
	}
}

func TestPipeline_SnapshotPreservesUnprocessedTail(t *testing.T) {
	// 12 entries: after the 10th the pipeline snapshots; fail the run
	// right after by cancelling the context, then check the snapshot.
	path := writeBibFile(t, 12)
	original, _ := os.ReadFile(path)

	ctx, cancel := context.WithCancel(context.Background())
	processed := 0
	lookup, _ := newTestLookup(t, func(w http.ResponseWriter, r *http.Request) {
		processed++
		if processed > 10 {
			cancel()
		}
		searchHandler(t)(w, r)
	})
	p := &Pipeline{Merger: &Merger{Lookup: lookup}}

	if _, err := p.Run(ctx, path); err == nil {
		t.Fatal("expected run to stop on cancellation")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	doc := bib.SplitDocument(string(content))
	if len(doc.Entries) != 12 {
		t.Fatalf("snapshot lost entries: %d", len(doc.Entries))
	}

	// First ten enriched, tail verbatim from the original.
	enriched := 0
	for _, e := range doc.Entries {
		if strings.Contains(e, "abstract = {Abstract text.}") {
			enriched++
		}
	}
	if enriched != 10 {
		t.Errorf("expected exactly 10 enriched entries in snapshot, got %d", enriched)
	}

	origDoc := bib.SplitDocument(string(original))
	for i := 10; i < 12; i++ {
		if doc.Entries[i] != origDoc.Entries[i] {
			t.Errorf("unprocessed entry %d not verbatim:\n%q", i, doc.Entries[i])
		}
	}
}

func TestPipeline_EmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bib")
	if err := os.WriteFile(path, []byte("only comments\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lookup := &Lookup{Cache: cache.New(t.TempDir(), time.Hour), Reprocess: true}
	p := &Pipeline{Merger: &Merger{Lookup: lookup}}

	stats, err := p.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("entries = %d, want 0", stats.Entries)
	}
}
