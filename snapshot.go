package edcore

import "bytes"

// Text is the read-only view a Matcher searches. Offsets are byte offsets.
type Text interface {
	Len() int64
	// Bytes returns the content. Callers must not modify it.
	Bytes() []byte
}

// Snapshot is an immutable copy of a document's content at one moment. It
// remains unchanged while the document is edited.
type Snapshot struct {
	data []byte
}

// newSnapshot wraps data, which must never be written to again.
func newSnapshot(data []byte) *Snapshot {
	return &Snapshot{data: data}
}

// Len returns the snapshot length in bytes.
func (s *Snapshot) Len() int64 {
	return int64(len(s.data))
}

// Bytes returns the snapshot content. Callers must not modify it.
func (s *Snapshot) Bytes() []byte {
	return s.data
}

// String returns the snapshot content.
func (s *Snapshot) String() string {
	return string(s.data)
}

// lineStartBefore returns the offset of the start of the line containing pos.
func lineStartBefore(data []byte, pos int64) int64 {
	return int64(bytes.LastIndexByte(data[:pos], '\n') + 1)
}
