package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gorewood/shiplog/internal/history"
)

func sampleChangeSet() *history.ChangeSet {
	return &history.ChangeSet{
		Commits: []history.Commit{
			{
				Hash:       "abcdef1234000000000000000000000000000000",
				Short:      "abcdef12",
				Message:    "fix: null pointer",
				AuthorName: "A",
			},
		},
		Files: []history.FileChange{
			{Path: "a.ts", Insertions: 3, Deletions: 1, DiffText: "+fixed\n-broken\n"},
		},
		TotalInsertions: 3,
		TotalDeletions:  1,
		FromRef:         "v1.0.0",
		ToRef:           "HEAD",
	}
}

func TestCompile_Deterministic(t *testing.T) {
	cs := sampleChangeSet()

	first := Compile(cs)
	second := Compile(cs)

	if first != second {
		t.Error("Compile should produce byte-identical output for the same input")
	}
	if first == "" {
		t.Error("Compile produced an empty prompt")
	}
}

func TestCompile_CommitAndFileLines(t *testing.T) {
	got := Compile(sampleChangeSet())

	if !strings.Contains(got, "abcdef12: fix: null pointer (A)") {
		t.Errorf("prompt missing commit line, got:\n%s", got)
	}
	if !strings.Contains(got, "a.ts: +3 -1") {
		t.Errorf("prompt missing file line, got:\n%s", got)
	}
	// 3+1 = 4 does not exceed the sampling threshold.
	if strings.Contains(got, "## Diff samples") {
		t.Error("prompt should omit the diff sample section below the threshold")
	}
}

func TestCompile_RangeMetadata(t *testing.T) {
	got := Compile(sampleChangeSet())

	if !strings.Contains(got, "From v1.0.0 to HEAD: 1 commits, 1 files changed, +3 -1") {
		t.Errorf("prompt missing range metadata, got:\n%s", got)
	}
}

func TestCompile_EmptyFromRef(t *testing.T) {
	cs := sampleChangeSet()
	cs.FromRef = ""

	got := Compile(cs)
	if !strings.Contains(got, "From (start of history) to HEAD") {
		t.Errorf("prompt should label an empty from ref, got:\n%s", got)
	}
}

func TestCompile_CategoryDefinitions(t *testing.T) {
	got := Compile(sampleChangeSet())

	for _, category := range []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"} {
		if !strings.Contains(got, "- "+category+":") {
			t.Errorf("prompt missing category definition for %s", category)
		}
	}
}

func TestCompile_DiffSampleAboveThreshold(t *testing.T) {
	cs := sampleChangeSet()
	cs.Files = []history.FileChange{
		{Path: "big.go", Insertions: 4, Deletions: 3, DiffText: "+four\n-three\n"},
	}

	got := Compile(cs)
	if !strings.Contains(got, "## Diff samples") {
		t.Error("prompt should include the diff sample section above the threshold")
	}
	if !strings.Contains(got, "### big.go\n```diff\n+four\n-three\n```") {
		t.Errorf("prompt missing fenced diff block, got:\n%s", got)
	}
}

func TestCompile_ThresholdIsExclusive(t *testing.T) {
	cs := sampleChangeSet()
	cs.Files = []history.FileChange{
		{Path: "edge.go", Insertions: 5, Deletions: 0, DiffText: "+five lines\n"},
	}

	got := Compile(cs)
	// Exactly 5 changed lines does not exceed the threshold.
	if strings.Contains(got, "## Diff samples") {
		t.Error("file with insertions+deletions == 5 should not be sampled")
	}
}

func TestCompile_AtMostFiveSamples(t *testing.T) {
	cs := sampleChangeSet()
	cs.Files = nil
	for i := 0; i < 7; i++ {
		cs.Files = append(cs.Files, history.FileChange{
			Path:       fmt.Sprintf("file%d.go", i),
			Insertions: 10,
			DiffText:   fmt.Sprintf("+content %d\n", i),
		})
	}

	got := Compile(cs)
	for i := 0; i < 5; i++ {
		if !strings.Contains(got, fmt.Sprintf("### file%d.go", i)) {
			t.Errorf("prompt missing sample for file%d.go", i)
		}
	}
	for i := 5; i < 7; i++ {
		if strings.Contains(got, fmt.Sprintf("### file%d.go", i)) {
			t.Errorf("prompt should not sample file%d.go beyond the cap", i)
		}
	}
	// Every file still gets its summary line.
	if !strings.Contains(got, "file6.go: +10 -0") {
		t.Error("unsampled files should keep their summary line")
	}
}

func TestCompile_TruncatesLongDiffs(t *testing.T) {
	cs := sampleChangeSet()
	cs.Files = []history.FileChange{
		{
			Path:       "huge.go",
			Insertions: 500,
			DiffText:   strings.Repeat("a", 1500) + "TAIL",
		},
	}

	got := Compile(cs)
	if strings.Contains(got, "TAIL") {
		t.Error("diff text beyond the cap should be cut")
	}
	if !strings.Contains(got, strings.Repeat("a", 1000)) {
		t.Error("diff text up to the cap should be kept")
	}
}

func TestCompile_SkipsFilesWithoutDiffText(t *testing.T) {
	cs := sampleChangeSet()
	cs.Files = []history.FileChange{
		{Path: "degraded.go", Insertions: 50, Deletions: 50},
		{Path: "intact.go", Insertions: 10, DiffText: "+usable\n"},
	}

	got := Compile(cs)
	if strings.Contains(got, "### degraded.go") {
		t.Error("file without diff text should not produce a sample block")
	}
	if !strings.Contains(got, "### intact.go") {
		t.Error("file with diff text should be sampled")
	}
	if !strings.Contains(got, "degraded.go: +50 -50") {
		t.Error("degraded file should keep its summary line")
	}
}

func TestSignificantFiles(t *testing.T) {
	files := []history.FileChange{
		{Path: "a", Insertions: 3, Deletions: 3, DiffText: "x"},
		{Path: "b", Insertions: 2, Deletions: 2, DiffText: "x"},
		{Path: "c", Insertions: 6, Deletions: 0, DiffText: "x"},
	}

	got := significantFiles(files)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Path != "a" || got[1].Path != "c" {
		t.Errorf("selected %q and %q, want a and c", got[0].Path, got[1].Path)
	}
}
