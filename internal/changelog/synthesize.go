// Package changelog turns raw generation-backend responses into final
// changelog output: markdown passthrough with a synthesized header when
// the model returned flat prose, or a structured document parsed from the
// response's category headers and bullets.
//
// Synthesize never fails. Model output is untrusted natural language, so
// every parsing path degrades to a fallback document carrying the raw
// response and the change set's numeric metadata instead of returning an
// error.
package changelog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/shiplog/internal/history"
)

// Output formats accepted by Synthesize.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Synthesize converts the backend's raw response into the final output
// string for the requested format. Markdown passes the text through,
// prepending an Unreleased header when the response has no headings of
// its own. JSON and YAML parse the response into a Document; if nothing
// parses, the serialized document carries the raw text and the change
// set's numeric metadata instead. Unknown formats render as markdown.
func Synthesize(raw string, cs *history.ChangeSet, format string) string {
	switch format {
	case FormatJSON, FormatYAML:
		return serialize(buildDocument(raw, cs), format, raw)
	default:
		return synthesizeMarkdown(raw)
	}
}

// synthesizeMarkdown trims the response and, when no line carries a
// heading marker, prepends an Unreleased header with today's date. Models
// sometimes return flat prose; the header keeps the output pasteable into
// an existing changelog.
func synthesizeMarkdown(raw string) string {
	text := strings.TrimSpace(raw)
	if hasHeading(text) {
		return text
	}
	return fmt.Sprintf("## [Unreleased] - %s\n\n%s", today(), text)
}

// hasHeading reports whether any line starts with a markdown heading
// marker.
func hasHeading(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}

// buildDocument parses raw into a structured Document. A parse that
// panics or finds no sections at all produces the fallback document.
func buildDocument(raw string, cs *history.ChangeSet) (doc Document) {
	defer func() {
		if r := recover(); r != nil {
			doc = fallbackDocument(raw, cs)
		}
	}()

	sections := Parse(raw)
	if len(sections) == 0 {
		return fallbackDocument(raw, cs)
	}

	return Document{
		Date:     today(),
		Sections: sections,
		Summary:  fmt.Sprintf("%d commits, %d files changed", len(cs.Commits), len(cs.Files)),
	}
}

// fallbackDocument wraps an unparseable response so the record is still
// complete: the raw text verbatim plus the numeric shape of the range.
func fallbackDocument(raw string, cs *history.ChangeSet) Document {
	return Document{
		Date: today(),
		Raw:  raw,
		Metadata: &RangeMetadata{
			Commits:    len(cs.Commits),
			Files:      len(cs.Files),
			Insertions: cs.TotalInsertions,
			Deletions:  cs.TotalDeletions,
			FromRef:    cs.FromRef,
			ToRef:      cs.ToRef,
		},
	}
}

// serialize renders the document in the requested structured format. A
// marshal failure returns the trimmed raw text; with these types that
// should be unreachable, but Synthesize must not fail.
func serialize(doc Document, format, raw string) string {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatYAML:
		out, err = yaml.Marshal(&doc)
	default:
		out, err = json.MarshalIndent(&doc, "", "  ")
	}
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimRight(string(out), "\n")
}

func today() string {
	return time.Now().Format("2006-01-02")
}
