package changelog

// Categories follow the Keep a Changelog specification:
// https://keepachangelog.com/en/1.1.0/
const (
	CategoryAdded      = "added"
	CategoryChanged    = "changed"
	CategoryDeprecated = "deprecated"
	CategoryRemoved    = "removed"
	CategoryFixed      = "fixed"
	CategorySecurity   = "security"
)

// Categories returns the six Keep a Changelog categories in their
// standard rendering order.
func Categories() []string {
	return []string{
		CategoryAdded,
		CategoryChanged,
		CategoryDeprecated,
		CategoryRemoved,
		CategoryFixed,
		CategorySecurity,
	}
}

// Section is one categorized group of changelog items, in the order the
// model emitted them.
type Section struct {
	Category string   `json:"category" yaml:"category"`
	Items    []string `json:"items" yaml:"items"`
}

// Document is the structured changelog produced by one generation run.
// A successful parse fills Sections and Summary. When the model response
// could not be parsed, Raw carries the response verbatim and Metadata the
// numeric shape of the change set, so the record stays complete even when
// its structure is lost.
type Document struct {
	Date     string         `json:"date" yaml:"date"`
	Sections []Section      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Summary  string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Raw      string         `json:"raw,omitempty" yaml:"raw,omitempty"`
	Metadata *RangeMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RangeMetadata is the numeric shape of an extracted revision range.
type RangeMetadata struct {
	Commits    int    `json:"commits" yaml:"commits"`
	Files      int    `json:"files" yaml:"files"`
	Insertions int    `json:"insertions" yaml:"insertions"`
	Deletions  int    `json:"deletions" yaml:"deletions"`
	FromRef    string `json:"from_ref" yaml:"from_ref"`
	ToRef      string `json:"to_ref" yaml:"to_ref"`
}

// IsFallback reports whether this document was produced by the raw-text
// fallback rather than a successful parse.
func (d *Document) IsFallback() bool {
	return d.Raw != ""
}

// ItemCount returns the total number of items across all sections.
func (d *Document) ItemCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}
