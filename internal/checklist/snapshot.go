package checklist

// Snapshot pairs a buffer with the document parsed from it. Item line
// indexes are only meaningful against the buffer of the same snapshot, so
// callers pass a whole Snapshot rather than its parts.
type Snapshot struct {
	Generation uint64
	Buffer     *Buffer
	Document   Document
}

// NewSnapshot parses b and tags the result with gen.
func NewSnapshot(gen uint64, b *Buffer) Snapshot {
	return Snapshot{Generation: gen, Buffer: b, Document: ParseBuffer(b)}
}

// Toggle flips it within this snapshot's buffer and returns the new buffer.
func (s Snapshot) Toggle(it Item) (*Buffer, error) {
	return Toggle(s.Buffer, it)
}
