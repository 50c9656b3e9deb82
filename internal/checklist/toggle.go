package checklist

import "fmt"

const (
	markerUnchecked = "- [ ]"
	markerChecked   = "- [x]"
)

// Toggle flips the checkbox of it in a copy of b and returns the copy. Only
// the five marker bytes on line it.Line change. If that line no longer holds a
// checklist item, Toggle returns ErrStaleLineReference and b is untouched.
func Toggle(b *Buffer, it Item) (*Buffer, error) {
	text, ok := b.Line(it.Line)
	if !ok {
		return nil, fmt.Errorf("line %d out of range: %w", it.Line, ErrStaleLineReference)
	}
	cl := ClassifyLine(text)
	if cl.Kind != KindItem {
		return nil, fmt.Errorf("line %d is not a checklist item: %w", it.Line, ErrStaleLineReference)
	}
	replacement := markerChecked
	if cl.Checked {
		replacement = markerUnchecked
	}
	start := cl.MarkerOffset
	end := start + len(markerChecked)
	out := b.Clone()
	if err := out.ReplaceLine(it.Line, text[:start]+replacement+text[end:]); err != nil {
		return nil, err
	}
	return out, nil
}
