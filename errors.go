// Package edcore is the editing core of a terminal screen editor: a rope-backed
// document buffer, literal and pattern search behind one Matcher interface,
// find-next navigation, replace-current / replace-all, and a linear undo log.
package edcore

import "errors"

// Text store errors
var (
	// ErrOutOfBounds indicates that an offset, line or column lies outside the document.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidBoundary indicates that an offset would split a UTF-8 encoded rune.
	ErrInvalidBoundary = errors.New("offset is not on a rune boundary")

	// ErrInvalidRange indicates that a range ends before it starts.
	ErrInvalidRange = errors.New("range end precedes start")

	// ErrInvalidUTF8 indicates that inserted text is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 sequence")
)

// Matcher errors
var (
	// ErrInvalidPattern indicates that a pattern-mode query does not parse.
	ErrInvalidPattern = errors.New("pattern is invalid")

	// ErrInvalidGroupReference indicates that a replacement refers to a capture
	// group the compiled pattern does not have.
	ErrInvalidGroupReference = errors.New("replacement references a missing capture group")

	// ErrModeUnavailable indicates that the requested matcher variant is not
	// compiled into this build.
	ErrModeUnavailable = errors.New("search mode not available in this build")

	// ErrEmptyQuery indicates that a query has no pattern text.
	ErrEmptyQuery = errors.New("empty search query")
)

// Search and replace errors
var (
	// ErrNoActiveMatch indicates that replace-current was called without a live match.
	ErrNoActiveMatch = errors.New("no active match")

	// ErrSearchIdle indicates that navigation was requested with no active search.
	ErrSearchIdle = errors.New("no active search")
)

// Undo log errors
var (
	// ErrNoTransaction indicates that there is no open transaction.
	ErrNoTransaction = errors.New("no open transaction")

	// ErrTransactionPending indicates that an operation is not allowed while a
	// transaction is open.
	ErrTransactionPending = errors.New("operation not allowed during transaction")

	// ErrTransactionPoisoned indicates that a transaction was poisoned by an inner abort.
	ErrTransactionPoisoned = errors.New("transaction was poisoned by inner abort")
)
