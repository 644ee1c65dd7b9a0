package edcore

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyTx applies edits to doc and wraps them in a transaction.
func applyTx(t *testing.T, doc *Document, name string, edits ...Edit) *Transaction {
	t.Helper()
	tx := NewTransaction(name, Caret(0))
	for _, e := range edits {
		require.NoError(t, e.Apply(doc))
		tx.Edits = append(tx.Edits, e)
	}
	tx.After = Caret(doc.Len())
	return tx
}

func TestUndoRedoLinearHistory(t *testing.T) {
	doc := NewDocument("base")
	u := NewUndoLog(0, nil)

	require.NoError(t, u.Commit(applyTx(t, doc, "append", Edit{Op: EditInsert, Offset: 4, Text: []byte(" one")})))
	require.Equal(t, "base one", doc.String())

	sel, ok, err := u.Undo(doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "base", doc.String())
	assert.Equal(t, Caret(0), sel)
	assert.True(t, u.CanRedo())

	sel, ok, err = u.Redo(doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "base one", doc.String())
	assert.Equal(t, Caret(8), sel)

	_, _, err = u.Undo(doc)
	require.NoError(t, err)
	require.NoError(t, u.Commit(applyTx(t, doc, "other", Edit{Op: EditInsert, Offset: 0, Text: []byte(">")})))
	assert.False(t, u.CanRedo(), "new commit clears redo")

	_, ok, err = u.Redo(doc)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ">base", doc.String())
}

func TestUndoEmptyStacks(t *testing.T) {
	doc := NewDocument("x")
	u := NewUndoLog(0, nil)

	_, ok, err := u.Undo(doc)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = u.Redo(doc)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "x", doc.String())
}

func TestUndoMultiEditOrder(t *testing.T) {
	doc := NewDocument("hello world")
	u := NewUndoLog(0, nil)

	tx := applyTx(t, doc, "replace",
		Edit{Op: EditDelete, Offset: 6, Text: []byte("world")},
		Edit{Op: EditInsert, Offset: 6, Text: []byte("there")},
		Edit{Op: EditInsert, Offset: 0, Text: []byte("oh, ")},
	)
	require.NoError(t, u.Commit(tx))
	require.Equal(t, "oh, hello there", doc.String())

	_, _, err := u.Undo(doc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", doc.String())

	_, _, err = u.Redo(doc)
	require.NoError(t, err)
	assert.Equal(t, "oh, hello there", doc.String())
}

func TestUndoLimitTrimsOldest(t *testing.T) {
	var buf bytes.Buffer
	doc := NewDocument("")
	u := NewUndoLog(2, log.New(&buf, "", 0))

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, u.Commit(applyTx(t, doc, s, Edit{Op: EditInsert, Offset: doc.Len(), Text: []byte(s)})))
	}
	assert.Equal(t, []string{"b", "c"}, u.History())
	assert.Contains(t, buf.String(), "dropped 1 oldest")

	for u.CanUndo() {
		_, _, err := u.Undo(doc)
		require.NoError(t, err)
	}
	assert.Equal(t, "a", doc.String())
}

func TestEmptyTransactionIgnored(t *testing.T) {
	u := NewUndoLog(0, nil)
	require.NoError(t, u.Commit(NewTransaction("noop", Caret(0))))
	assert.False(t, u.CanUndo())
}

func TestTransactionGrouping(t *testing.T) {
	doc := NewDocument("abc")
	u := NewUndoLog(0, nil)

	u.Begin("outer", Caret(0))
	u.Begin("inner", Caret(9))
	assert.Equal(t, 2, u.Depth())

	require.NoError(t, doc.InsertString(0, "x"))
	require.NoError(t, u.Record(Edit{Op: EditInsert, Offset: 0, Text: []byte("x")}))

	tx, err := u.End(doc, Caret(1))
	require.NoError(t, err)
	assert.Nil(t, tx, "inner end does not commit")

	assert.ErrorIs(t, u.Commit(NewTransaction("x", Caret(0))), ErrTransactionPending)
	_, _, err = u.Undo(doc)
	assert.ErrorIs(t, err, ErrTransactionPending)

	tx, err = u.End(doc, Caret(1))
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "outer", tx.Name)
	assert.Equal(t, Caret(0), tx.Before)
	assert.NotEqual(t, [16]byte{}, [16]byte(tx.ID))
	assert.Equal(t, []string{"outer"}, u.History())
}

func TestTransactionPoisoning(t *testing.T) {
	doc := NewDocument("abc")
	u := NewUndoLog(0, nil)

	u.Begin("outer", Caret(0))
	require.NoError(t, doc.InsertString(3, "d"))
	require.NoError(t, u.Record(Edit{Op: EditInsert, Offset: 3, Text: []byte("d")}))

	u.Begin("inner", Caret(0))
	require.NoError(t, u.Rollback(doc))
	assert.Equal(t, "abcd", doc.String(), "inner rollback defers the revert")

	_, err := u.End(doc, Caret(0))
	assert.ErrorIs(t, err, ErrTransactionPoisoned)
	assert.Equal(t, "abc", doc.String())
	assert.False(t, u.CanUndo())
	assert.Equal(t, 0, u.Depth())
}

func TestTransactionRollbackOutermost(t *testing.T) {
	doc := NewDocument("abc")
	u := NewUndoLog(0, nil)

	u.Begin("edit", Caret(0))
	require.NoError(t, doc.Delete(0, 1))
	require.NoError(t, u.Record(Edit{Op: EditDelete, Offset: 0, Text: []byte("a")}))
	require.NoError(t, u.Rollback(doc))

	assert.Equal(t, "abc", doc.String())
	assert.False(t, u.CanUndo())
}

func TestTransactionErrors(t *testing.T) {
	u := NewUndoLog(0, nil)
	doc := NewDocument("")

	assert.ErrorIs(t, u.Record(Edit{}), ErrNoTransaction)
	_, err := u.End(doc, Caret(0))
	assert.ErrorIs(t, err, ErrNoTransaction)
	assert.ErrorIs(t, u.Rollback(doc), ErrNoTransaction)
}
