// Package prompt compiles a history.ChangeSet into the single bounded
// request string sent to the generation backend.
//
// Compile is a pure function: no I/O, no clock, no model calls. The same
// ChangeSet always produces byte-identical output, which keeps prompt
// construction reproducible and testable without a backend.
//
// Token cost stays bounded regardless of change-set size through three
// fixed policy constants: diff text is sampled only from files with more
// than significanceThreshold changed lines, at most maxDiffSamples files
// contribute samples, and each sample is cut at maxDiffChars characters.
package prompt

import (
	"fmt"
	"strings"

	"github.com/gorewood/shiplog/internal/history"
)

const (
	// significanceThreshold is the combined insertion+deletion count a
	// file must exceed before its diff text is sampled.
	significanceThreshold = 5

	// maxDiffSamples caps how many files contribute diff text.
	maxDiffSamples = 5

	// maxDiffChars caps the diff text taken from a single file.
	maxDiffChars = 1000
)

// Compile renders the changelog-writing prompt for a change set.
func Compile(cs *history.ChangeSet) string {
	var b strings.Builder

	writePreamble(&b)
	writeRange(&b, cs)
	writeCommits(&b, cs.Commits)
	writeFiles(&b, cs.Files)
	writeDiffSamples(&b, cs.Files)
	writeInstructions(&b)

	return b.String()
}

func writePreamble(b *strings.Builder) {
	b.WriteString("You are writing a changelog entry for a software release.\n")
	b.WriteString("Summarize the repository changes below for the project's users.\n\n")
	b.WriteString("Group changes under these categories:\n")
	b.WriteString("- Added: new features\n")
	b.WriteString("- Changed: changes in existing functionality\n")
	b.WriteString("- Deprecated: soon-to-be removed features\n")
	b.WriteString("- Removed: features removed in this release\n")
	b.WriteString("- Fixed: bug fixes\n")
	b.WriteString("- Security: vulnerability fixes\n\n")
}

func writeRange(b *strings.Builder, cs *history.ChangeSet) {
	from := cs.FromRef
	if from == "" {
		from = "(start of history)"
	}
	b.WriteString("## Range\n\n")
	fmt.Fprintf(b, "From %s to %s: %d commits, %d files changed, +%d -%d\n\n",
		from, cs.ToRef, len(cs.Commits), len(cs.Files),
		cs.TotalInsertions, cs.TotalDeletions)
}

func writeCommits(b *strings.Builder, commits []history.Commit) {
	b.WriteString("## Commits\n\n")
	for _, c := range commits {
		fmt.Fprintf(b, "%s: %s (%s)\n", c.Short, c.Message, c.AuthorName)
	}
	b.WriteString("\n")
}

func writeFiles(b *strings.Builder, files []history.FileChange) {
	b.WriteString("## Files\n\n")
	for _, f := range files {
		fmt.Fprintf(b, "%s: +%d -%d\n", f.Path, f.Insertions, f.Deletions)
	}
	b.WriteString("\n")
}

// writeDiffSamples emits fenced diff blocks for significant files. The
// section is omitted entirely when no file qualifies, so the model never
// sees an empty header.
func writeDiffSamples(b *strings.Builder, files []history.FileChange) {
	samples := significantFiles(files)
	if len(samples) == 0 {
		return
	}

	b.WriteString("## Diff samples\n\n")
	for _, f := range samples {
		text := f.DiffText
		if len(text) > maxDiffChars {
			text = text[:maxDiffChars]
		}
		fmt.Fprintf(b, "### %s\n```diff\n%s\n```\n\n", f.Path, strings.TrimRight(text, "\n"))
	}
}

// significantFiles returns the first maxDiffSamples files whose change
// volume exceeds significanceThreshold, in original order. Files whose
// diff text could not be retrieved have nothing to sample and are passed
// over without consuming a slot.
func significantFiles(files []history.FileChange) []history.FileChange {
	var out []history.FileChange
	for _, f := range files {
		if f.Insertions+f.Deletions <= significanceThreshold || f.DiffText == "" {
			continue
		}
		out = append(out, f)
		if len(out) == maxDiffSamples {
			break
		}
	}
	return out
}

func writeInstructions(b *strings.Builder) {
	b.WriteString("## Instructions\n\n")
	b.WriteString("Write the changelog now. Use only the category names above as\n")
	b.WriteString("\"## <Category>\" headers, with one \"-\" bullet per change. Write\n")
	b.WriteString("for users, not contributors: describe behavior, not implementation.\n")
	b.WriteString("Omit categories with no entries. Do not include a version number,\n")
	b.WriteString("a date, or any text before the first header.\n")
}
