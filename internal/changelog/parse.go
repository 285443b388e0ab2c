package changelog

import "strings"

// Parse scans raw model output line by line and groups bullet items under
// category headers. It is a two-state machine: outside any section, or
// inside the most recently opened one. A header line opens a section and
// closes the previous; a bullet line adds an item to the open section.
// Bullet lines before any header have no home and are dropped. Blank
// lines and prose are ignored. Model output is best-effort text, so an
// unparseable input yields zero sections rather than an error.
func Parse(raw string) []Section {
	var sections []Section
	var open *Section

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		if category, ok := matchHeader(line); ok {
			if open != nil {
				sections = append(sections, *open)
			}
			open = &Section{Category: category}
			continue
		}

		if item, ok := matchBullet(line); ok {
			if open == nil {
				continue
			}
			open.Items = append(open.Items, item)
		}
	}

	if open != nil {
		sections = append(sections, *open)
	}
	return sections
}

// matchHeader reports whether line is a category header: an optional run
// of heading markers, then one of the six canonical names in any case,
// then an optional trailing colon.
func matchHeader(line string) (string, bool) {
	s := strings.TrimLeft(line, "#")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	s = strings.ToLower(strings.TrimSpace(s))

	for _, category := range Categories() {
		if s == category {
			return category, true
		}
	}
	return "", false
}

// matchBullet reports whether line is a bullet item, returning the text
// with the marker stripped.
func matchBullet(line string) (string, bool) {
	if len(line) < 2 || (line[0] != '-' && line[0] != '*') {
		return "", false
	}
	if line[1] != ' ' && line[1] != '\t' {
		return "", false
	}
	return strings.TrimSpace(line[1:]), true
}
