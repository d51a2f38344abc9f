package sites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

func parseEntry(t *testing.T, block string) *bib.Entry {
	t.Helper()
	e, err := bib.ParseEntry(block)
	if err != nil {
		t.Fatalf("parsing fixture entry: %v", err)
	}
	return e
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "author_sites.json")
	content := `{"Kazanzides, Peter": "JHU", "Chen, Wei": "CUHK and JHU"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("LoadMapping() error: %v", err)
	}
	if m["Kazanzides, Peter"] != "JHU" {
		t.Errorf("mapping = %v", m)
	}

	managed := m.ManagedSites()
	for _, site := range []string{"JHU", "CUHK"} {
		if !managed[site] {
			t.Errorf("managed sites missing %s: %v", site, managed)
		}
	}
}

func TestNameVariants(t *testing.T) {
	got := nameVariants("Kazanzides, Peter John")
	want := []string{
		"Kazanzides, Peter John",
		"Peter John Kazanzides",
		"Kazanzides, P. J.",
		"P. J. Kazanzides",
		"Kazanzides, P.J.",
		"P.J. Kazanzides",
		"Kazanzides, P.",
		"P. Kazanzides",
	}
	if len(got) != len(want) {
		t.Fatalf("variants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAuthorMatches(t *testing.T) {
	tests := []struct {
		name      string
		authorStr string
		want      bool
	}{
		{"Kazanzides, Peter", "Kazanzides, Peter and Smith, Jane", true},
		{"Kazanzides, Peter", "Peter Kazanzides and Jane Smith", true},
		{"Kazanzides, Peter", "P. Kazanzides, J. Smith", true},
		{"Kazanzides, Peter", "Kazanzides, P. and Smith, J.", true},
		{"Chen, Wei", "Wei Chen", true},
		// Substring of a longer surname must not match.
		{"Chen, Wei", "Wei Chenoweth", false},
		{"Kazanzides, Peter", "Smith, Jane", false},
		// Case-insensitive.
		{"Kazanzides, Peter", "KAZANZIDES, PETER", true},
	}
	for _, tt := range tests {
		if got := authorMatches(tt.name, tt.authorStr); got != tt.want {
			t.Errorf("authorMatches(%q, %q) = %v, want %v", tt.name, tt.authorStr, got, tt.want)
		}
	}
}

func TestApply_AddsMappedSites(t *testing.T) {
	m := Mapping{"Kazanzides, Peter": "JHU", "Chen, Wei": "CUHK"}
	e := parseEntry(t, `@article{K2023,
  author = {Kazanzides, Peter and Chen, Wei},
  title = {Shared Control},
}`)

	if !Apply(e, m) {
		t.Fatal("expected change")
	}
	if got := e.Get("dvrk_site"); got != "JHU and CUHK" {
		t.Errorf("dvrk_site = %q, want JHU pinned first", got)
	}
}

func TestApply_PreservesUnmanagedSites(t *testing.T) {
	m := Mapping{"Chen, Wei": "CUHK"}
	e := parseEntry(t, `@article{K2023,
  author = {Chen, Wei},
  dvrk_site = {Custom Lab},
}`)

	if !Apply(e, m) {
		t.Fatal("expected change")
	}
	if got := e.Get("dvrk_site"); got != "CUHK and Custom Lab" {
		t.Errorf("dvrk_site = %q", got)
	}
}

func TestApply_RemovesStaleManagedSite(t *testing.T) {
	// CUHK is managed but its author is no longer on the entry.
	m := Mapping{"Chen, Wei": "CUHK"}
	e := parseEntry(t, `@article{K2023,
  author = {Smith, Jane},
  dvrk_site = {CUHK},
}`)

	if !Apply(e, m) {
		t.Fatal("expected change")
	}
	if e.Has("dvrk_site") {
		t.Errorf("dvrk_site should be dropped, got %q", e.Get("dvrk_site"))
	}
}

func TestApply_NoChangeIsStable(t *testing.T) {
	m := Mapping{"Chen, Wei": "CUHK"}
	e := parseEntry(t, `@article{K2023,
  author = {Chen, Wei},
  dvrk_site = {CUHK},
}`)

	if Apply(e, m) {
		t.Error("no-op apply reported a change")
	}
}

func TestApply_MultilineAuthorField(t *testing.T) {
	m := Mapping{"Kazanzides, Peter": "JHU"}
	e := parseEntry(t, `@article{K2023,
  author = {Smith, Jane and
            Kazanzides, Peter},
}`)

	if !Apply(e, m) {
		t.Fatal("expected change")
	}
	if got := e.Get("dvrk_site"); got != "JHU" {
		t.Errorf("dvrk_site = %q", got)
	}
}
