package view

import (
	"strings"

	"github.com/magdy/fawkes/mdpanel/internal/checklist"
	"github.com/magdy/fawkes/mdpanel/internal/settings"
)

// Project builds the display rows for snap under s. It never returns an empty
// slice: when nothing qualifies, a single placeholder row is returned.
func Project(snap checklist.Snapshot, s settings.Settings) []Node {
	var nodes []Node
	msg := MsgEmptyRange
	if s.KanbanEnabled {
		nodes = projectKanban(snap)
		msg = MsgNoItems
	} else {
		nodes = projectFlat(snap.Buffer, s.StartLine, s.EndLine)
	}
	if len(nodes) == 0 {
		return Placeholder(msg)
	}
	return nodes
}

// Window converts the 1-based start line and exclusive end line into slice
// bounds for a buffer of n lines. endLine 0 means "to the end".
func Window(startLine, endLine, n int) (start, end int) {
	start = max(0, startLine-1)
	end = n
	if endLine > 0 {
		end = endLine
	}
	start = min(start, n)
	end = min(end, n)
	if end < start {
		end = start
	}
	return start, end
}

// projectFlat shows raw lines of the window without checkbox semantics.
func projectFlat(b *checklist.Buffer, startLine, endLine int) []Node {
	lines := b.Lines()
	start, end := Window(startLine, endLine, len(lines))
	var nodes []Node
	for _, line := range lines[start:end] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nodes = append(nodes, Node{Kind: KindText, Label: strings.TrimSuffix(line, "\r")})
	}
	return nodes
}

// projectKanban shows every non-empty section followed by its items.
// The line window does not apply here.
func projectKanban(snap checklist.Snapshot) []Node {
	var nodes []Node
	for _, sec := range snap.Document.Sections {
		if len(sec.Items) == 0 {
			continue
		}
		nodes = append(nodes, Node{Kind: KindSeparator, Label: sec.Title})
		for _, it := range sec.Items {
			nodes = append(nodes, Node{
				Kind:       KindCheckbox,
				Label:      it.Text,
				Checked:    it.Checked,
				Line:       it.Line + 1,
				Item:       it,
				Generation: snap.Generation,
			})
		}
	}
	return nodes
}
