package checklist

import (
	"regexp"
	"strings"
)

const sectionPrefix = "## "

// itemPattern matches a checklist line: indent, the bracket state, and the
// text after the marker. The marker itself starts at the end of group 1.
var itemPattern = regexp.MustCompile(`^(\s*)- \[([ xX])\] (.*)$`)

// LineKind classifies a raw line.
type LineKind int

const (
	KindOther LineKind = iota
	KindSection
	KindItem
)

func (k LineKind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindItem:
		return "item"
	default:
		return "other"
	}
}

// Line is the classification of a single buffer line.
type Line struct {
	Kind    LineKind
	Title   string // section title, KindSection only
	Text    string // item text, KindItem only
	Checked bool   // KindItem only
	// MarkerOffset is the byte offset of "- [" within the line, KindItem only.
	MarkerOffset int
}

// ClassifyLine reports whether text is a section marker, a checklist item or
// anything else. It has no side effects.
func ClassifyLine(text string) Line {
	if strings.HasPrefix(text, sectionPrefix) {
		return Line{Kind: KindSection, Title: strings.TrimSpace(text[len(sectionPrefix):])}
	}
	m := itemPattern.FindStringSubmatch(text)
	if m == nil {
		return Line{Kind: KindOther}
	}
	return Line{
		Kind:         KindItem,
		Text:         strings.TrimSpace(m[3]),
		Checked:      strings.EqualFold(m[2], "x"),
		MarkerOffset: len(m[1]),
	}
}
