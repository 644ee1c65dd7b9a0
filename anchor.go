package edcore

import "slices"

// Anchor is a position within a Document that follows mutations.
// Inserting at or before the anchor moves it right; deleting text before it
// moves it left. If the text around the anchor is deleted, the anchor collapses
// to the start of the deleted range and reports itself invalid until it is
// moved again.
type Anchor struct {
	doc    *Document
	offset int64
	valid  bool
}

// NewAnchor registers an anchor at offset.
func (d *Document) NewAnchor(offset int64) (*Anchor, error) {
	if err := d.checkOffset(offset); err != nil {
		return nil, err
	}
	a := &Anchor{doc: d, offset: offset, valid: true}
	d.anchors = append(d.anchors, a)
	return a, nil
}

// AnchorCount returns the number of registered anchors.
func (d *Document) AnchorCount() int {
	return len(d.anchors)
}

// Offset returns the anchor's byte offset.
func (a *Anchor) Offset() int64 {
	return a.offset
}

// Valid reports whether the anchor still addresses the text it was placed at.
func (a *Anchor) Valid() bool {
	return a.valid
}

// Position returns the anchor's line and rune column.
func (a *Anchor) Position() (Position, error) {
	return a.doc.Position(a.offset)
}

// Seek moves the anchor to offset and marks it valid again.
func (a *Anchor) Seek(offset int64) error {
	if a.doc == nil {
		return ErrOutOfBounds
	}
	if err := a.doc.checkOffset(offset); err != nil {
		return err
	}
	a.offset = offset
	a.valid = true
	return nil
}

// SeekAddress moves the anchor to the position an Address resolves to.
func (a *Anchor) SeekAddress(addr Address) error {
	if a.doc == nil {
		return ErrOutOfBounds
	}
	offset, err := a.doc.Resolve(addr)
	if err != nil {
		return err
	}
	return a.Seek(offset)
}

// SeekRelativeRunes moves the anchor by delta runes, clamped to the document.
func (a *Anchor) SeekRelativeRunes(delta int64) error {
	if a.doc == nil {
		return ErrOutOfBounds
	}
	r, err := a.doc.OffsetToRune(a.offset)
	if err != nil {
		return err
	}
	r = min(max(r+delta, 0), a.doc.RuneCount())
	offset, err := a.doc.RuneToOffset(r)
	if err != nil {
		return err
	}
	return a.Seek(offset)
}

// Release unregisters the anchor. A released anchor keeps its last offset but
// no longer follows mutations.
func (a *Anchor) Release() {
	if a.doc == nil {
		return
	}
	a.doc.anchors = slices.DeleteFunc(a.doc.anchors, func(other *Anchor) bool {
		return other == a
	})
	a.doc = nil
}
