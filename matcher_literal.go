package edcore

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// asciiFold holds the folded form of every ASCII rune.
var asciiFold [utf8.RuneSelf]string

func init() {
	for r := rune(0); r < utf8.RuneSelf; r++ {
		asciiFold[r] = string(unicode.ToLower(r))
	}
}

// literalMatcher matches the query text verbatim. When the query is case
// insensitive, text and pattern are compared rune by rune after Unicode case
// folding, so the reported offsets address the original text even when a
// rune folds to a different length.
//
// A literalMatcher is not safe for concurrent use.
type literalMatcher struct {
	query   SearchQuery
	pattern []byte

	folded string
	caser  cases.Caser
	cache  map[rune]string
}

func compileLiteral(query SearchQuery) (Matcher, error) {
	pattern := strings.ToValidUTF8(query.Pattern, "�")
	m := &literalMatcher{
		query:   query,
		pattern: []byte(pattern),
	}
	if !query.CaseSensitive {
		m.caser = cases.Fold()
		m.cache = make(map[rune]string)
		var sb strings.Builder
		for _, r := range pattern {
			sb.WriteString(m.foldRune(r))
		}
		m.folded = sb.String()
	}
	return m, nil
}

func (m *literalMatcher) Query() SearchQuery {
	return m.query
}

func (m *literalMatcher) foldRune(r rune) string {
	if r < utf8.RuneSelf {
		return asciiFold[r]
	}
	if f, ok := m.cache[r]; ok {
		return f
	}
	f := m.caser.String(string(r))
	m.cache[r] = f
	return f
}

// matchAt reports whether the pattern occurs at start and where it ends.
func (m *literalMatcher) matchAt(data []byte, start int64) (int64, bool) {
	if m.query.CaseSensitive {
		end := start + int64(len(m.pattern))
		if end > int64(len(data)) || !bytes.Equal(data[start:end], m.pattern) {
			return 0, false
		}
		return end, true
	}
	want := m.folded
	pos := start
	for len(want) > 0 {
		if pos >= int64(len(data)) {
			return 0, false
		}
		r, size := utf8.DecodeRune(data[pos:])
		f := m.foldRune(r)
		if !strings.HasPrefix(want, f) {
			return 0, false
		}
		want = want[len(f):]
		pos += int64(size)
	}
	return pos, true
}

func (m *literalMatcher) accept(data []byte, start, end int64) bool {
	return !m.query.WholeWord || isWholeWord(data, start, end)
}

func (m *literalMatcher) FindForward(text Text, from int64) (MatchSpan, bool) {
	data := text.Bytes()
	n := int64(len(data))
	from = clampOffset(from, n)

	if m.query.CaseSensitive {
		for s := from; s <= n; {
			idx := bytes.Index(data[s:], m.pattern)
			if idx < 0 {
				return MatchSpan{}, false
			}
			start := s + int64(idx)
			end := start + int64(len(m.pattern))
			if m.accept(data, start, end) {
				return literalSpan(start, end), true
			}
			s = nextRuneStart(data, start)
		}
		return MatchSpan{}, false
	}

	for s := from; s < n; s = nextRuneStart(data, s) {
		if end, ok := m.matchAt(data, s); ok && m.accept(data, s, end) {
			return literalSpan(s, end), true
		}
	}
	return MatchSpan{}, false
}

func (m *literalMatcher) FindBackward(text Text, from int64) (MatchSpan, bool) {
	data := text.Bytes()
	n := int64(len(data))
	// Literal patterns are never empty, so no match starts at n.
	from = clampOffset(from, n)

	if m.query.CaseSensitive {
		plen := int64(len(m.pattern))
		for hi := from; hi > 0; {
			// Matches starting before hi end before hi-1+plen.
			window := data[:min(hi-1+plen, n)]
			idx := int64(bytes.LastIndex(window, m.pattern))
			if idx < 0 {
				return MatchSpan{}, false
			}
			if m.accept(data, idx, idx+plen) {
				return literalSpan(idx, idx+plen), true
			}
			hi = idx
		}
		return MatchSpan{}, false
	}

	for s := from; s > 0; {
		_, size := utf8.DecodeLastRune(data[:s])
		s -= int64(size)
		if end, ok := m.matchAt(data, s); ok && m.accept(data, s, end) {
			return literalSpan(s, end), true
		}
	}
	return MatchSpan{}, false
}

func (m *literalMatcher) NumGroups() int {
	return 0
}

func (m *literalMatcher) CheckReplacement(string) error {
	return nil
}

func (m *literalMatcher) Expand(_ Text, _ MatchSpan, replacement string) []byte {
	return []byte(replacement)
}

func literalSpan(start, end int64) MatchSpan {
	return MatchSpan{Start: start, End: end, Groups: []int64{start, end}}
}

// isWordRune reports whether r counts as part of a word for whole-word matching.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWholeWord reports whether [start, end) is not directly preceded or
// followed by a word rune.
func isWholeWord(data []byte, start, end int64) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRune(data[:start]); isWordRune(r) {
			return false
		}
	}
	if end < int64(len(data)) {
		if r, _ := utf8.DecodeRune(data[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

// nextRuneStart returns the offset of the rune after pos, or len(data)+1 when
// pos is already at the end.
func nextRuneStart(data []byte, pos int64) int64 {
	if pos >= int64(len(data)) {
		return pos + 1
	}
	_, size := utf8.DecodeRune(data[pos:])
	return pos + int64(size)
}
