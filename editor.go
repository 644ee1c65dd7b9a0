package edcore

import (
	"log"
	"slices"
)

// Editor is one editing session: a document, its undo log, a selection and a
// search session. Every mutation made through the Editor is recorded as
// exactly one undo transaction.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	doc     *Document
	undo    *UndoLog
	session *Session

	anchor *Anchor
	head   *Anchor

	opts   Options
	logger *log.Logger
}

// NewEditor creates an editor over text with the caret at the start.
func NewEditor(text string, opts Options) *Editor {
	doc := NewDocument(text)
	logger := opts.logger()
	e := &Editor{
		doc:     doc,
		undo:    NewUndoLog(opts.UndoLimit, logger),
		session: NewSession(doc),
		opts:    opts,
		logger:  logger,
	}
	e.anchor, _ = doc.NewAnchor(0)
	e.head, _ = doc.NewAnchor(0)
	return e
}

// Document returns the edited document. Mutating it directly bypasses the
// undo log.
func (e *Editor) Document() *Document {
	return e.doc
}

// UndoLog returns the editor's undo history.
func (e *Editor) UndoLog() *UndoLog {
	return e.undo
}

// Session returns the editor's search session.
func (e *Editor) Session() *Session {
	return e.session
}

// Options returns the editor's options.
func (e *Editor) Options() Options {
	return e.opts
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	return Selection{Anchor: e.anchor.Offset(), Head: e.head.Offset()}
}

// Select sets the selection.
func (e *Editor) Select(anchor, head int64) error {
	if err := e.doc.checkRange(min(anchor, head), max(anchor, head)); err != nil {
		return err
	}
	e.anchor.Seek(anchor)
	e.head.Seek(head)
	return nil
}

// SetCaret collapses the selection to offset.
func (e *Editor) SetCaret(offset int64) error {
	return e.Select(offset, offset)
}

// Transaction groups every mutation made inside fn into one undo step. If fn
// fails, its edits are reverted and the selection is restored.
func (e *Editor) Transaction(name string, fn func() error) error {
	before := e.Selection()
	e.undo.Begin(name, before)
	if err := fn(); err != nil {
		if rerr := e.undo.Rollback(e.doc); rerr != nil {
			e.logger.Printf("rollback of %q failed: %v", name, rerr)
		}
		e.restore(before)
		return err
	}
	if _, err := e.undo.End(e.doc, e.Selection()); err != nil {
		e.restore(before)
		return err
	}
	return nil
}

// InsertText replaces the selection with text, or inserts it at the caret, and
// leaves the caret after the inserted text.
func (e *Editor) InsertText(text string) error {
	return e.Transaction("insert", func() error {
		start, end := e.Selection().Range()
		if err := e.remove(start, end); err != nil {
			return err
		}
		if err := e.insert(start, []byte(text)); err != nil {
			return err
		}
		return e.SetCaret(start + int64(len(text)))
	})
}

// InsertAt inserts text at offset without moving the selection other than by
// the usual anchor adjustment.
func (e *Editor) InsertAt(offset int64, text string) error {
	return e.Transaction("insert", func() error {
		return e.insert(offset, []byte(text))
	})
}

// DeleteRange removes [start, end).
func (e *Editor) DeleteRange(start, end int64) error {
	return e.Transaction("delete", func() error {
		return e.remove(start, end)
	})
}

// ReplaceRange replaces [start, end) with text.
func (e *Editor) ReplaceRange(start, end int64, text string) error {
	return e.Transaction("replace", func() error {
		if err := e.remove(start, end); err != nil {
			return err
		}
		return e.insert(start, []byte(text))
	})
}

// Undo reverts the last transaction and restores the selection it started
// with. It reports false when there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	sel, ok, err := e.undo.Undo(e.doc)
	if ok {
		e.restore(sel)
	}
	return ok, err
}

// Redo reapplies the last undone transaction. It reports false when there is
// nothing to redo.
func (e *Editor) Redo() (bool, error) {
	sel, ok, err := e.undo.Redo(e.doc)
	if ok {
		e.restore(sel)
	}
	return ok, err
}

// StartSearch starts a search from the caret and selects the first match.
func (e *Editor) StartSearch(query SearchQuery, opts SearchOptions) (FindResult, error) {
	res, err := e.session.StartAt(e.head.Offset(), query, opts)
	return e.selectResult(res, err)
}

// FindNext selects the following match.
func (e *Editor) FindNext() (FindResult, error) {
	return e.selectResult(e.session.Next())
}

// FindPrevious selects the preceding match.
func (e *Editor) FindPrevious() (FindResult, error) {
	return e.selectResult(e.session.Previous())
}

// FindAgain repeats the search in its configured direction.
func (e *Editor) FindAgain() (FindResult, error) {
	return e.selectResult(e.session.Again())
}

// CancelSearch ends the active search.
func (e *Editor) CancelSearch() {
	e.session.Cancel()
}

func (e *Editor) selectResult(res FindResult, err error) (FindResult, error) {
	if err != nil || !res.Found {
		return res, err
	}
	e.anchor.Seek(res.Span.Start)
	e.head.Seek(res.Span.End)
	return res, nil
}

func (e *Editor) restore(sel Selection) {
	n := e.doc.Len()
	e.anchor.Seek(clampOffset(sel.Anchor, n))
	e.head.Seek(clampOffset(sel.Head, n))
}

// insert applies and records an insertion inside an open transaction.
func (e *Editor) insert(offset int64, text []byte) error {
	if len(text) == 0 {
		return e.doc.checkOffset(offset)
	}
	if err := e.doc.Insert(offset, text); err != nil {
		return err
	}
	return e.undo.Record(Edit{Op: EditInsert, Offset: offset, Text: slices.Clone(text)})
}

// remove applies and records a deletion inside an open transaction.
func (e *Editor) remove(start, end int64) error {
	removed, err := e.doc.Slice(start, end)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}
	if err := e.doc.Delete(start, end); err != nil {
		return err
	}
	return e.undo.Record(Edit{Op: EditDelete, Offset: start, Text: removed})
}
