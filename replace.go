package edcore

import (
	"context"
	"fmt"
)

// Range is a byte range [Start, End).
type Range struct {
	Start int64
	End   int64
}

// ReplaceAllOptions configures ReplaceAll.
type ReplaceAllOptions struct {
	// Scope limits replacement to matches lying entirely inside it. Text before
	// the scope is context for anchors and word boundaries; the scope end is
	// treated as the end of the text. Nil means the whole document.
	Scope *Range

	// ChunkSize overrides Options.ChunkSize when positive.
	ChunkSize int

	// OnChunk is called after every ChunkSize replacements with the running count.
	OnChunk func(replaced int)
}

// ReplaceCurrent substitutes the session's current match, records the change
// as one transaction, and searches again. The session cursor is placed after
// the replacement (before it when the search runs backward) so the inserted
// text is not matched again. After an empty match the next forward search
// starts one rune past the replacement.
//
// It fails with ErrNoActiveMatch when there is no current match, including
// when edits since the match was found have changed the matched text and
// when the last navigation found nothing further.
func (e *Editor) ReplaceCurrent(replacement string) (FindResult, error) {
	m := e.session.Matcher()
	if m == nil {
		return FindResult{}, ErrNoActiveMatch
	}
	span, ok := e.session.Current()
	if !ok {
		return FindResult{}, ErrNoActiveMatch
	}
	if err := m.CheckReplacement(replacement); err != nil {
		return FindResult{}, err
	}
	text := m.Expand(e.doc, span, replacement)

	err := e.Transaction("replace", func() error {
		if err := e.remove(span.Start, span.End); err != nil {
			return err
		}
		if err := e.insert(span.Start, text); err != nil {
			return err
		}
		return e.SetCaret(span.Start + int64(len(text)))
	})
	if err != nil {
		return FindResult{}, err
	}

	cursor := span.Start + int64(len(text))
	backward := e.session.Options().Direction == Backward
	if backward {
		cursor = span.Start
	}
	if err := e.session.resume(cursor, span.Empty() && !backward); err != nil {
		return FindResult{}, err
	}
	return e.FindAgain()
}

// ReplaceAll replaces every match of the active search, scanning forward from
// the start of the scope without wrapping. Matches are located in a snapshot
// of the content taken when the call starts, so text produced by a
// replacement is never matched again. The whole run is one transaction.
//
// Work proceeds in chunks; between chunks OnChunk is called and ctx is
// checked. If ctx is done, the replacements made so far are committed as one
// transaction and the partial count is returned with ctx.Err().
func (e *Editor) ReplaceAll(ctx context.Context, replacement string, opts ReplaceAllOptions) (int, error) {
	m := e.session.Matcher()
	if m == nil {
		return 0, ErrSearchIdle
	}
	if err := m.CheckReplacement(replacement); err != nil {
		return 0, err
	}
	scope := Range{Start: 0, End: e.doc.Len()}
	if opts.Scope != nil {
		scope = *opts.Scope
		if err := e.doc.checkRange(scope.Start, scope.End); err != nil {
			return 0, fmt.Errorf("replace scope: %w", err)
		}
	}
	chunk := opts.ChunkSize
	if chunk < 1 {
		chunk = e.opts.chunkSize()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Matching runs on the content up to the scope end, so the end of the
	// scope acts as the end of the text while earlier text stays as context.
	data := e.doc.Snapshot().Bytes()[:scope.End]
	snap := newSnapshot(data)
	var (
		count   int
		delta   int64
		prevEnd int64 = -1
		stopErr error
	)
	err := e.Transaction("replace all", func() error {
		for pos := scope.Start; pos <= scope.End; {
			span, ok := m.FindForward(snap, pos)
			if !ok {
				return nil
			}
			if span.Empty() && span.Start == prevEnd {
				pos = nextRuneStart(data, span.Start)
				continue
			}

			text := m.Expand(snap, span, replacement)
			at := span.Start + delta
			if err := e.remove(at, span.End+delta); err != nil {
				return err
			}
			if err := e.insert(at, text); err != nil {
				return err
			}
			delta += int64(len(text)) - span.Len()
			count++
			prevEnd = span.End

			pos = span.End
			if span.Empty() {
				pos = nextRuneStart(data, pos)
			}

			if count%chunk == 0 {
				if opts.OnChunk != nil {
					opts.OnChunk(count)
				}
				if err := ctx.Err(); err != nil {
					stopErr = err
					return nil
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.session.forget()
	if stopErr != nil {
		e.logger.Printf("replace all cancelled after %d replacement(s): %v", count, stopErr)
		return count, stopErr
	}
	if opts.OnChunk != nil && count%chunk != 0 {
		opts.OnChunk(count)
	}
	e.logger.Printf("replace all: %d replacement(s)", count)
	return count, nil
}
