package edcore

import "fmt"

// SessionState is the state of a search Session.
type SessionState int

const (
	// SessionIdle means no search is active.
	SessionIdle SessionState = iota
	// SessionActive means a query is compiled and navigation finds matches.
	SessionActive
	// SessionExhausted means the last navigation found nothing further.
	SessionExhausted
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionActive:
		return "active"
	case SessionExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// SearchOptions configures a search session.
type SearchOptions struct {
	Direction Direction
	Wrap      bool
}

// FindResult is the outcome of one navigation step.
type FindResult struct {
	Span    MatchSpan
	Found   bool
	Wrapped bool
}

// Session is a find-next session over one document. It holds the compiled
// matcher, the search options, its own cursor, and the last match. The last
// match is held by anchors so it follows edits; it is only used again if the
// text at its position still matches.
//
// A Session never modifies the document.
type Session struct {
	doc     *Document
	cursor  *Anchor
	matcher Matcher
	opts    SearchOptions
	state   SessionState

	// last match
	start, end *Anchor
	last       MatchSpan
	lastGen    uint64
}

// NewSession creates an idle session with its cursor at the start of doc.
func NewSession(doc *Document) *Session {
	cursor, _ := doc.NewAnchor(0)
	return &Session{doc: doc, cursor: cursor}
}

// State returns the session state.
func (s *Session) State() SessionState {
	return s.state
}

// Options returns the options of the active search.
func (s *Session) Options() SearchOptions {
	return s.opts
}

// Matcher returns the compiled matcher, or nil when idle.
func (s *Session) Matcher() Matcher {
	return s.matcher
}

// Query returns the active query. It reports false when idle.
func (s *Session) Query() (SearchQuery, bool) {
	if s.matcher == nil {
		return SearchQuery{}, false
	}
	return s.matcher.Query(), true
}

// Cursor returns the offset searches start from when there is no last match.
func (s *Session) Cursor() int64 {
	return s.cursor.Offset()
}

// SetCursor moves the session cursor and forgets the last match.
func (s *Session) SetCursor(offset int64) error {
	if err := s.cursor.Seek(offset); err != nil {
		return err
	}
	s.forget()
	return nil
}

// Start compiles query and runs the first search from the cursor in
// opts.Direction. If the query does not compile the session is unchanged.
func (s *Session) Start(query SearchQuery, opts SearchOptions) (FindResult, error) {
	return s.StartAt(s.cursor.Offset(), query, opts)
}

// StartAt is Start with the cursor first moved to offset.
func (s *Session) StartAt(offset int64, query SearchQuery, opts SearchOptions) (FindResult, error) {
	m, err := Compile(query)
	if err != nil {
		return FindResult{}, err
	}
	if err := s.cursor.Seek(offset); err != nil {
		return FindResult{}, err
	}
	s.forget()
	s.matcher = m
	s.opts = opts
	s.state = SessionActive
	return s.find(opts.Direction), nil
}

// Next finds the following match.
func (s *Session) Next() (FindResult, error) {
	if s.state == SessionIdle {
		return FindResult{}, ErrSearchIdle
	}
	return s.find(Forward), nil
}

// Previous finds the preceding match.
func (s *Session) Previous() (FindResult, error) {
	if s.state == SessionIdle {
		return FindResult{}, ErrSearchIdle
	}
	return s.find(Backward), nil
}

// Again repeats the search in the session's direction.
func (s *Session) Again() (FindResult, error) {
	if s.state == SessionIdle {
		return FindResult{}, ErrSearchIdle
	}
	return s.find(s.opts.Direction), nil
}

// Cancel discards the matcher and the last match.
func (s *Session) Cancel() {
	s.forget()
	s.matcher = nil
	s.opts = SearchOptions{}
	s.state = SessionIdle
}

// Close cancels the session and releases its anchors.
func (s *Session) Close() {
	s.Cancel()
	s.cursor.Release()
}

// Current returns the last match if the text at its position still matches.
// Capture group offsets are recomputed against the current content. An
// exhausted session has no current match.
func (s *Session) Current() (MatchSpan, bool) {
	if s.state != SessionActive || s.start == nil {
		return MatchSpan{}, false
	}
	if s.doc.Generation() == s.lastGen {
		return s.last, true
	}
	if !s.start.Valid() || !s.end.Valid() {
		return MatchSpan{}, false
	}
	start, end := s.start.Offset(), s.end.Offset()
	span, ok := s.matcher.FindForward(s.doc, start)
	if !ok || span.Start != start || span.End != end {
		return MatchSpan{}, false
	}
	s.remember(span)
	return span, true
}

// resume continues the search from offset after the last match was replaced.
// When the replaced match was empty, offset is treated as a zero-width match
// so the next forward search starts one rune further.
func (s *Session) resume(offset int64, wasEmpty bool) error {
	if err := s.SetCursor(offset); err != nil {
		return err
	}
	if wasEmpty {
		s.remember(MatchSpan{Start: offset, End: offset})
	}
	return nil
}

func (s *Session) find(dir Direction) FindResult {
	span, ok := s.search(dir, s.origin(dir))
	result := FindResult{Span: span, Found: ok}
	if !ok && s.opts.Wrap {
		boundary := int64(0)
		if dir == Backward {
			boundary = s.doc.Len() + 1
		}
		span, ok = s.search(dir, boundary)
		result = FindResult{Span: span, Found: ok, Wrapped: ok}
	}
	if !ok {
		s.state = SessionExhausted
		return result
	}
	s.state = SessionActive
	s.remember(span)
	return result
}

// origin returns where a search in dir starts: past the last match, or at the
// cursor when there is none.
func (s *Session) origin(dir Direction) int64 {
	if s.start == nil {
		return s.cursor.Offset()
	}
	if dir == Backward {
		return s.start.Offset()
	}
	end := s.end.Offset()
	if end == s.start.Offset() {
		return s.doc.NextRune(end) + boolOffset(end == s.doc.Len())
	}
	return end
}

func (s *Session) search(dir Direction, from int64) (MatchSpan, bool) {
	if from > s.doc.Len() && dir == Forward {
		return MatchSpan{}, false
	}
	if dir == Backward {
		return s.matcher.FindBackward(s.doc, from)
	}
	return s.matcher.FindForward(s.doc, from)
}

func (s *Session) remember(span MatchSpan) {
	if s.start == nil {
		s.start, _ = s.doc.NewAnchor(span.Start)
		s.end, _ = s.doc.NewAnchor(span.End)
	} else {
		s.start.Seek(span.Start)
		s.end.Seek(span.End)
	}
	s.last = span
	s.lastGen = s.doc.Generation()
}

func (s *Session) forget() {
	if s.start != nil {
		s.start.Release()
		s.end.Release()
	}
	s.start, s.end = nil, nil
	s.last = MatchSpan{}
}

func boolOffset(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
