package edcore

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// EditOp is the kind of a primitive edit.
type EditOp int

const (
	EditInsert EditOp = iota
	EditDelete
)

func (op EditOp) String() string {
	if op == EditDelete {
		return "delete"
	}
	return "insert"
}

// Edit is one primitive document change. For deletions Text holds the removed
// bytes so the edit can be inverted.
type Edit struct {
	Op     EditOp
	Offset int64
	Text   []byte
}

// Apply performs the edit on doc.
func (e Edit) Apply(doc *Document) error {
	if e.Op == EditDelete {
		end := e.Offset + int64(len(e.Text))
		return doc.Delete(e.Offset, end)
	}
	return doc.Insert(e.Offset, e.Text)
}

// Invert returns the edit that undoes e.
func (e Edit) Invert() Edit {
	op := EditDelete
	if e.Op == EditDelete {
		op = EditInsert
	}
	return Edit{Op: op, Offset: e.Offset, Text: e.Text}
}

// Selection is an anchor and a head offset. The head is where the caret is;
// the two are equal when nothing is selected.
type Selection struct {
	Anchor int64
	Head   int64
}

// Caret returns a selection with nothing selected at offset.
func Caret(offset int64) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// Range returns the selected range in document order.
func (s Selection) Range() (start, end int64) {
	return min(s.Anchor, s.Head), max(s.Anchor, s.Head)
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// Transaction is one undo step: the ordered edits of a user action plus the
// selections before and after it.
type Transaction struct {
	ID     uuid.UUID
	Name   string
	Edits  []Edit
	Before Selection
	After  Selection
}

// NewTransaction creates an empty named transaction.
func NewTransaction(name string, before Selection) *Transaction {
	return &Transaction{ID: uuid.New(), Name: name, Before: before, After: before}
}

func (tx *Transaction) undo(doc *Document) error {
	for i := len(tx.Edits) - 1; i >= 0; i-- {
		if err := tx.Edits[i].Invert().Apply(doc); err != nil {
			return fmt.Errorf("undo %q edit %d: %w", tx.Name, i, err)
		}
	}
	return nil
}

func (tx *Transaction) redo(doc *Document) error {
	for i, e := range tx.Edits {
		if err := e.Apply(doc); err != nil {
			return fmt.Errorf("redo %q edit %d: %w", tx.Name, i, err)
		}
	}
	return nil
}

// UndoLog is a linear undo/redo history of transactions.
//
// Transactions are either built elsewhere and pushed with Commit, or grouped
// with Begin, Record and End. Begin calls nest: only the outermost End commits,
// and a Rollback at any depth poisons the whole group.
type UndoLog struct {
	undo  []*Transaction
	redo  []*Transaction
	limit int

	logger *log.Logger

	pending  *Transaction
	depth    int
	poisoned bool
}

// NewUndoLog creates an undo log keeping at most limit transactions (no limit
// when limit is zero or less).
func NewUndoLog(limit int, logger *log.Logger) *UndoLog {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &UndoLog{limit: limit, logger: logger}
}

// Commit pushes a finished transaction and clears the redo history.
// Transactions without edits are ignored.
func (u *UndoLog) Commit(tx *Transaction) error {
	if u.depth > 0 {
		return ErrTransactionPending
	}
	u.push(tx)
	return nil
}

func (u *UndoLog) push(tx *Transaction) {
	if tx == nil || len(tx.Edits) == 0 {
		return
	}
	u.undo = append(u.undo, tx)
	u.redo = nil
	if u.limit > 0 && len(u.undo) > u.limit {
		trimmed := len(u.undo) - u.limit
		u.undo = append([]*Transaction(nil), u.undo[trimmed:]...)
		u.logger.Printf("undo history full, dropped %d oldest transaction(s)", trimmed)
	}
}

// Depth returns the nesting depth of the open transaction, 0 when none is open.
func (u *UndoLog) Depth() int {
	return u.depth
}

// Begin opens a transaction, or nests inside the one already open. The name and
// selection of nested calls are ignored.
func (u *UndoLog) Begin(name string, before Selection) {
	if u.depth == 0 {
		u.pending = NewTransaction(name, before)
		u.poisoned = false
	}
	u.depth++
}

// Record appends an edit that has already been applied to the document.
func (u *UndoLog) Record(e Edit) error {
	if u.depth == 0 {
		return ErrNoTransaction
	}
	u.pending.Edits = append(u.pending.Edits, e)
	return nil
}

// End closes the innermost transaction. Closing the outermost one commits it
// and returns it. If an inner level was rolled back, the recorded edits are
// reverted on doc and ErrTransactionPoisoned is returned instead.
func (u *UndoLog) End(doc *Document, after Selection) (*Transaction, error) {
	if u.depth == 0 {
		return nil, ErrNoTransaction
	}
	u.depth--
	if u.depth > 0 {
		return nil, nil
	}

	tx := u.pending
	u.pending = nil
	if u.poisoned {
		u.poisoned = false
		if err := tx.undo(doc); err != nil {
			return nil, err
		}
		return nil, ErrTransactionPoisoned
	}
	tx.After = after
	u.push(tx)
	return tx, nil
}

// Rollback abandons the innermost transaction. At the outermost level the
// recorded edits are reverted on doc; at inner levels the group is poisoned
// and reverted when the outermost End runs.
func (u *UndoLog) Rollback(doc *Document) error {
	if u.depth == 0 {
		return ErrNoTransaction
	}
	u.poisoned = true
	u.depth--
	if u.depth > 0 {
		return nil
	}

	tx := u.pending
	u.pending = nil
	u.poisoned = false
	return tx.undo(doc)
}

// Undo reverts the most recent transaction and returns the selection to
// restore. It reports false when there is nothing to undo.
func (u *UndoLog) Undo(doc *Document) (Selection, bool, error) {
	if u.depth > 0 {
		return Selection{}, false, ErrTransactionPending
	}
	if len(u.undo) == 0 {
		return Selection{}, false, nil
	}
	tx := u.undo[len(u.undo)-1]
	if err := tx.undo(doc); err != nil {
		return Selection{}, false, err
	}
	u.undo = u.undo[:len(u.undo)-1]
	u.redo = append(u.redo, tx)
	return tx.Before, true, nil
}

// Redo reapplies the most recently undone transaction and returns the
// selection to restore. It reports false when there is nothing to redo.
func (u *UndoLog) Redo(doc *Document) (Selection, bool, error) {
	if u.depth > 0 {
		return Selection{}, false, ErrTransactionPending
	}
	if len(u.redo) == 0 {
		return Selection{}, false, nil
	}
	tx := u.redo[len(u.redo)-1]
	if err := tx.redo(doc); err != nil {
		return Selection{}, false, err
	}
	u.redo = u.redo[:len(u.redo)-1]
	u.undo = append(u.undo, tx)
	return tx.After, true, nil
}

// CanUndo reports whether Undo has something to revert.
func (u *UndoLog) CanUndo() bool {
	return len(u.undo) > 0
}

// CanRedo reports whether Redo has something to reapply.
func (u *UndoLog) CanRedo() bool {
	return len(u.redo) > 0
}

// History returns the names of the undoable transactions, oldest first.
func (u *UndoLog) History() []string {
	names := make([]string, len(u.undo))
	for i, tx := range u.undo {
		names[i] = tx.Name
	}
	return names
}

// Last returns the most recent undoable transaction, or nil.
func (u *UndoLog) Last() *Transaction {
	if len(u.undo) == 0 {
		return nil
	}
	return u.undo[len(u.undo)-1]
}
