package edcore

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Document is the text store: UTF-8 content held in a balanced rope with a
// line index derived from per-node newline counts.
//
// All offsets are byte offsets and must fall on rune boundaries. A Document is
// not safe for concurrent use; it belongs to a single editing session.
type Document struct {
	root    *node
	anchors []*Anchor

	// flat caches the flattened content between mutations. It is replaced,
	// never written to, so slices handed out earlier stay intact.
	flat []byte

	// generation increments on every mutation.
	generation uint64
}

// NewDocument creates a document holding text. Invalid UTF-8 sequences are
// replaced with U+FFFD so that every offset addresses a whole rune.
func NewDocument(text string) *Document {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return &Document{root: buildLeaves([]byte(text))}
}

// Len returns the document length in bytes.
func (d *Document) Len() int64 {
	if d.root == nil {
		return 0
	}
	return d.root.byteCount
}

// RuneCount returns the number of runes in the document.
func (d *Document) RuneCount() int64 {
	if d.root == nil {
		return 0
	}
	return d.root.runeCount
}

// LineCount returns the number of lines. An empty document has one line, and
// a trailing newline starts a final empty line.
func (d *Document) LineCount() int64 {
	if d.root == nil {
		return 1
	}
	return d.root.lineCount + 1
}

// Generation returns a counter that changes on every mutation.
func (d *Document) Generation() uint64 {
	return d.generation
}

// String returns the whole content.
func (d *Document) String() string {
	return string(d.Bytes())
}

// Bytes returns the whole content. The returned slice must not be modified;
// it stays valid (and unchanged) after later mutations.
func (d *Document) Bytes() []byte {
	if d.flat == nil {
		d.flat = appendRange(make([]byte, 0, d.Len()), d.root, 0, d.Len())
	}
	return d.flat
}

// IsBoundary reports whether offset lies within the document on a rune boundary.
func (d *Document) IsBoundary(offset int64) bool {
	return d.checkOffset(offset) == nil
}

func (d *Document) checkOffset(offset int64) error {
	if offset < 0 || offset > d.Len() {
		return fmt.Errorf("offset %d of %d: %w", offset, d.Len(), ErrOutOfBounds)
	}
	if offset == 0 || offset == d.Len() {
		return nil
	}
	if !utf8.RuneStart(byteAt(d.root, offset)) {
		return fmt.Errorf("offset %d: %w", offset, ErrInvalidBoundary)
	}
	return nil
}

func (d *Document) checkRange(start, end int64) error {
	if end < start {
		return fmt.Errorf("range [%d, %d): %w", start, end, ErrInvalidRange)
	}
	if err := d.checkOffset(start); err != nil {
		return err
	}
	return d.checkOffset(end)
}

// Insert inserts text at offset. Anchors at or after offset shift by len(text).
func (d *Document) Insert(offset int64, text []byte) error {
	if err := d.checkOffset(offset); err != nil {
		return err
	}
	if !utf8.Valid(text) {
		return ErrInvalidUTF8
	}
	if len(text) == 0 {
		return nil
	}
	d.root = insertAt(d.root, offset, text)
	d.mutated()

	delta := int64(len(text))
	for _, a := range d.anchors {
		if a.offset >= offset {
			a.offset += delta
		}
	}
	return nil
}

// InsertString is Insert for string input.
func (d *Document) InsertString(offset int64, text string) error {
	return d.Insert(offset, []byte(text))
}

// Delete removes the bytes in [start, end). Anchors at or after end shift
// left; anchors strictly inside the range collapse to start and become invalid.
func (d *Document) Delete(start, end int64) error {
	if err := d.checkRange(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	d.root = deleteRange(d.root, start, end)
	if d.root != nil && d.root.byteCount == 0 {
		d.root = nil
	}
	d.mutated()

	delta := end - start
	for _, a := range d.anchors {
		switch {
		case a.offset >= end:
			a.offset -= delta
		case a.offset > start:
			a.offset = start
			a.valid = false
		}
	}
	return nil
}

// Slice returns a copy of the bytes in [start, end).
func (d *Document) Slice(start, end int64) ([]byte, error) {
	if err := d.checkRange(start, end); err != nil {
		return nil, err
	}
	return appendRange(make([]byte, 0, end-start), d.root, start, end), nil
}

// SliceString returns the text in [start, end).
func (d *Document) SliceString(start, end int64) (string, error) {
	b, err := d.Slice(start, end)
	return string(b), err
}

// LineOf returns the 0-indexed line containing offset.
func (d *Document) LineOf(offset int64) (int64, error) {
	if offset < 0 || offset > d.Len() {
		return 0, fmt.Errorf("offset %d of %d: %w", offset, d.Len(), ErrOutOfBounds)
	}
	return newlinesBefore(d.root, offset), nil
}

// LineStart returns the offset where line begins.
func (d *Document) LineStart(line int64) (int64, error) {
	if line < 0 || line >= d.LineCount() {
		return 0, fmt.Errorf("line %d of %d: %w", line, d.LineCount(), ErrOutOfBounds)
	}
	if line == 0 {
		return 0, nil
	}
	return lineStartOffset(d.root, line), nil
}

// LineEnd returns the offset of line's terminating newline, or the document
// length for the last line.
func (d *Document) LineEnd(line int64) (int64, error) {
	if line < 0 || line >= d.LineCount() {
		return 0, fmt.Errorf("line %d of %d: %w", line, d.LineCount(), ErrOutOfBounds)
	}
	if line == d.LineCount()-1 {
		return d.Len(), nil
	}
	return lineStartOffset(d.root, line+1) - 1, nil
}

// Line returns the content of line without its newline.
func (d *Document) Line(line int64) (string, error) {
	start, err := d.LineStart(line)
	if err != nil {
		return "", err
	}
	end, err := d.LineEnd(line)
	if err != nil {
		return "", err
	}
	return d.SliceString(start, end)
}

// OffsetOf converts a line and rune column into an offset. The column may
// point at the line's newline (or end of document) but not past it.
func (d *Document) OffsetOf(line, column int64) (int64, error) {
	start, err := d.LineStart(line)
	if err != nil {
		return 0, err
	}
	end, _ := d.LineEnd(line)
	if column < 0 {
		return 0, fmt.Errorf("column %d: %w", column, ErrOutOfBounds)
	}
	text := appendRange(nil, d.root, start, end)
	var pos, col int64
	for col < column {
		if pos >= int64(len(text)) {
			return 0, fmt.Errorf("line %d column %d: %w", line, column, ErrOutOfBounds)
		}
		_, size := utf8.DecodeRune(text[pos:])
		pos += int64(size)
		col++
	}
	return start + pos, nil
}

// Position returns the line and rune column of offset.
func (d *Document) Position(offset int64) (Position, error) {
	if err := d.checkOffset(offset); err != nil {
		return Position{}, err
	}
	line := newlinesBefore(d.root, offset)
	start := int64(0)
	if line > 0 {
		start = lineStartOffset(d.root, line)
	}
	col := int64(utf8.RuneCount(appendRange(nil, d.root, start, offset)))
	return Position{Line: line, Column: col}, nil
}

// OffsetToRune converts a byte offset into an absolute rune index.
func (d *Document) OffsetToRune(offset int64) (int64, error) {
	if err := d.checkOffset(offset); err != nil {
		return 0, err
	}
	return runesBefore(d.root, offset), nil
}

// RuneToOffset converts an absolute rune index into a byte offset.
func (d *Document) RuneToOffset(r int64) (int64, error) {
	if r < 0 || r > d.RuneCount() {
		return 0, fmt.Errorf("rune %d of %d: %w", r, d.RuneCount(), ErrOutOfBounds)
	}
	return runeOffset(d.root, r), nil
}

// NextRune returns the offset one rune after offset, or Len() at the end.
func (d *Document) NextRune(offset int64) int64 {
	if offset >= d.Len() {
		return d.Len()
	}
	hit, ok := findLeaf(d.root, offset)
	if !ok || hit.offset >= hit.leaf.byteCount {
		return d.Len()
	}
	_, size := utf8.DecodeRune(hit.leaf.data[hit.offset:])
	return offset + int64(size)
}

// Snapshot returns an immutable view of the current content for matching.
func (d *Document) Snapshot() *Snapshot {
	return newSnapshot(d.Bytes())
}

// DocumentStats describes the shape of the rope.
type DocumentStats struct {
	Leaves int
	Height int
	Bytes  int64
	Lines  int64
}

// Stats returns rope statistics.
func (d *Document) Stats() DocumentStats {
	stats := DocumentStats{Bytes: d.Len(), Lines: d.LineCount()}
	if d.root != nil {
		stats.Height = d.root.height
		stats.Leaves = len(collectLeaves(d.root, nil))
	}
	return stats
}

// Rebalance rebuilds the rope as a perfectly balanced tree of its leaves.
// Content and anchors are unaffected.
func (d *Document) Rebalance() {
	leaves := collectLeaves(d.root, nil)
	d.root = buildBalanced(leaves)
}

func (d *Document) mutated() {
	d.flat = nil
	d.generation++
}
