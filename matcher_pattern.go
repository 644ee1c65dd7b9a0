//go:build !edcore_literal

package edcore

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"unicode/utf8"
)

func init() {
	registerVariant(ModePattern, compilePattern)
}

// backwardWindow is the initial number of bytes scanned before the search
// position by FindBackward. The window doubles until a match is found.
const backwardWindow = 4096

// patternMatcher matches RE2 regular expressions. Patterns are multi-line: ^
// and $ match at line boundaries.
//
// Go's regexp cannot start a search in the middle of its input, so searches
// starting at from > 0 run a second expression on the input beginning one rune
// earlier. That expression consumes exactly one rune before the pattern, which
// lets ^, \b and \B see the character actually preceding the match.
type patternMatcher struct {
	query SearchQuery
	re    *regexp.Regexp
	after *regexp.Regexp
}

func compilePattern(query SearchQuery) (Matcher, error) {
	flags := syntax.Perl &^ syntax.OneLine
	if !query.CaseSensitive {
		flags |= syntax.FoldCase
	}
	if _, err := syntax.Parse(query.Pattern, flags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	// The pattern parsed on its own, so its groups are balanced and wrapping
	// it cannot change its meaning.
	expr := query.Pattern
	if query.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	prefix := "(?m)"
	if !query.CaseSensitive {
		prefix = "(?mi)"
	}
	expr = prefix + expr

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	after, err := regexp.Compile(`(?s:.)(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &patternMatcher{query: query, re: re, after: after}, nil
}

func (m *patternMatcher) Query() SearchQuery {
	return m.query
}

// NumGroups returns the number of capture groups in the pattern.
func (m *patternMatcher) NumGroups() int {
	return m.re.NumSubexp()
}

// matchFrom returns the leftmost match starting at or after pos.
func (m *patternMatcher) matchFrom(data []byte, pos int64) (MatchSpan, bool) {
	if pos == 0 {
		loc := m.re.FindSubmatchIndex(data)
		if loc == nil {
			return MatchSpan{}, false
		}
		return patternSpan(loc, 0, int64(loc[0])), true
	}
	_, size := utf8.DecodeLastRune(data[:pos])
	base := pos - int64(size)
	loc := m.after.FindSubmatchIndex(data[base:])
	if loc == nil {
		return MatchSpan{}, false
	}
	_, lead := utf8.DecodeRune(data[base+int64(loc[0]):])
	return patternSpan(loc, base, base+int64(loc[0])+int64(lead)), true
}

// patternSpan converts a submatch index slice relative to base into a span.
// start replaces the reported start of group 0.
func patternSpan(loc []int, base, start int64) MatchSpan {
	groups := make([]int64, len(loc))
	for i, v := range loc {
		if v < 0 {
			groups[i] = -1
			continue
		}
		groups[i] = base + int64(v)
	}
	groups[0] = start
	return MatchSpan{Start: start, End: groups[1], Groups: groups}
}

func (m *patternMatcher) FindForward(text Text, from int64) (MatchSpan, bool) {
	data := text.Bytes()
	return m.matchFrom(data, clampOffset(from, int64(len(data))))
}

func (m *patternMatcher) FindBackward(text Text, from int64) (MatchSpan, bool) {
	data := text.Bytes()
	hi := clampOffset(from, int64(len(data))+1)
	for window := int64(backwardWindow); hi > 0; window *= 2 {
		lo := lineStartBefore(data, clampOffset(hi-window, int64(len(data))))

		// Enumerate every match start in [lo, hi) and keep the last one.
		var last MatchSpan
		found := false
		for pos := lo; pos < hi; {
			span, ok := m.matchFrom(data, pos)
			if !ok || span.Start >= hi {
				break
			}
			last, found = span, true
			pos = nextRuneStart(data, span.Start)
		}
		if found {
			return last, true
		}
		hi = lo
	}
	return MatchSpan{}, false
}

func (m *patternMatcher) CheckReplacement(replacement string) error {
	return checkTemplate(replacement, m.re.SubexpNames())
}

func (m *patternMatcher) Expand(text Text, span MatchSpan, replacement string) []byte {
	match := make([]int, len(span.Groups))
	for i, v := range span.Groups {
		match[i] = int(v)
	}
	return m.re.Expand(nil, []byte(replacement), text.Bytes(), match)
}
