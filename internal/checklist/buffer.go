package checklist

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDecode is returned when file content is not valid UTF-8.
	ErrDecode = errors.New("content is not valid UTF-8")
	// ErrStaleLineReference is returned when a toggle targets a line that no
	// longer holds a checklist item.
	ErrStaleLineReference = errors.New("stale line reference")
)

const (
	lineEndingLF   = "\n"
	lineEndingCRLF = "\r\n"
)

// Buffer holds the exact file content as an index-addressable slice of lines.
// Joining the lines with the detected line ending reproduces the input bytes.
type Buffer struct {
	lines      []string
	lineEnding string
}

// NewBuffer splits data into lines. A trailing newline yields a final empty
// line so that Bytes round-trips exactly.
func NewBuffer(data []byte) (*Buffer, error) {
	if !utf8.Valid(data) {
		return nil, ErrDecode
	}
	text := string(data)
	ending := lineEndingLF
	if strings.Contains(text, lineEndingCRLF) && strings.Count(text, lineEndingCRLF) == strings.Count(text, lineEndingLF) {
		ending = lineEndingCRLF
	}
	return &Buffer{
		lines:      strings.Split(text, ending),
		lineEnding: ending,
	}, nil
}

// BufferFromLines builds an LF buffer from already split lines.
func BufferFromLines(lines []string) *Buffer {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Buffer{lines: cp, lineEnding: lineEndingLF}
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

// Line returns line i, or false when i is out of range.
func (b *Buffer) Line(i int) (string, bool) {
	if b == nil || i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

// Lines returns a copy of the lines.
func (b *Buffer) Lines() []string {
	if b == nil {
		return nil
	}
	cp := make([]string, len(b.lines))
	copy(cp, b.lines)
	return cp
}

// LineEnding reports the separator used when joining lines.
func (b *Buffer) LineEnding() string {
	return b.lineEnding
}

// Bytes joins the lines back into file content.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return []byte(strings.Join(b.lines, b.lineEnding))
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{lines: b.Lines(), lineEnding: b.lineEnding}
}

// ReplaceLine swaps the content of a single line in place. It is the only
// mutation a Buffer supports; line count and order never change.
func (b *Buffer) ReplaceLine(i int, text string) error {
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("replace line %d of %d: %w", i, len(b.lines), ErrStaleLineReference)
	}
	if strings.ContainsAny(text, "\n") {
		return fmt.Errorf("replace line %d: replacement spans multiple lines", i)
	}
	b.lines[i] = text
	return nil
}
