// Package checklist parses markdown checklists into sections and items and
// toggles item markers in place.
//
// A section starts at a line beginning with "## " and runs until the next such
// line. Items are lines of the form "- [ ] text" or "- [x] text", optionally
// indented. Every item remembers the index of the line it came from so a
// toggle can rewrite exactly that line and nothing else.
package checklist

// Item is a single checklist entry.
type Item struct {
	Text    string
	Checked bool
	// Line is the 0-based index of the source line in the Buffer.
	Line int
}

// Section is a named group of items.
type Section struct {
	Title string
	Items []Item
}

// Document is the parsed structure of a buffer. Sections without items and
// items before the first section are not part of it.
type Document struct {
	Sections []Section
}

// Stats summarizes checked state across a document.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Open      int `json:"open"`
}

// Parse scans lines once and groups checklist items under their sections.
func Parse(lines []string) Document {
	var doc Document
	var current *Section
	flush := func() {
		if current != nil && len(current.Items) > 0 {
			doc.Sections = append(doc.Sections, *current)
		}
	}
	for i, text := range lines {
		cl := ClassifyLine(text)
		switch cl.Kind {
		case KindSection:
			flush()
			current = &Section{Title: cl.Title}
		case KindItem:
			// Items before the first section have nowhere to go.
			if current == nil {
				continue
			}
			current.Items = append(current.Items, Item{Text: cl.Text, Checked: cl.Checked, Line: i})
		}
	}
	flush()
	return doc
}

// ParseBuffer is Parse over the lines of b.
func ParseBuffer(b *Buffer) Document {
	if b == nil {
		return Document{}
	}
	return Parse(b.lines)
}

// Empty reports whether the document has no sections.
func (d Document) Empty() bool {
	return len(d.Sections) == 0
}

// Stats counts open and completed items.
func (d Document) Stats() Stats {
	var s Stats
	for _, sec := range d.Sections {
		for _, it := range sec.Items {
			s.Total++
			if it.Checked {
				s.Completed++
			}
		}
	}
	s.Open = s.Total - s.Completed
	return s
}
