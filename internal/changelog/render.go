package changelog

import (
	"fmt"
	"strings"
)

// Markdown renders the document as a Keep a Changelog fragment: an
// Unreleased version header, then one category block per section with
// "-" bullets. Rendering and re-parsing preserves section order and item
// text. Fallback documents render as their raw text.
func (d *Document) Markdown() string {
	if d.IsFallback() {
		return strings.TrimSpace(d.Raw)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## [Unreleased] - %s\n", d.Date)
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n### %s\n", displayName(s.Category))
		for _, item := range s.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// displayName capitalizes a category name for rendering.
func displayName(category string) string {
	if category == "" {
		return category
	}
	return strings.ToUpper(category[:1]) + category[1:]
}
