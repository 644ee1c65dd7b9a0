package edcore

import (
	"fmt"
	"slices"
)

// MatchSpan is a match location: the byte range [Start, End) plus, for
// pattern matches, capture group offsets.
type MatchSpan struct {
	Start int64
	End   int64

	// Groups holds absolute start/end pairs for every capture group, group 0
	// first. Groups that did not participate are -1. Literal matches carry only
	// group 0.
	Groups []int64
}

// Len returns the length of the match in bytes.
func (s MatchSpan) Len() int64 {
	return s.End - s.Start
}

// Empty reports whether the match is zero-width.
func (s MatchSpan) Empty() bool {
	return s.Start == s.End
}

func (s MatchSpan) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Matcher finds occurrences of a compiled query.
//
// FindForward returns the nearest match with Start >= from. FindBackward
// returns the nearest match with Start < from; from may be Len()+1 to include
// an empty match at the end of the text. Both report false when there is none.
// Returned offsets always fall on rune boundaries.
type Matcher interface {
	Query() SearchQuery
	FindForward(text Text, from int64) (MatchSpan, bool)
	FindBackward(text Text, from int64) (MatchSpan, bool)

	// NumGroups returns the number of capture groups, not counting the whole
	// match.
	NumGroups() int

	// CheckReplacement validates the group references in a replacement template.
	CheckReplacement(replacement string) error

	// Expand returns the bytes that replace span. The template must have
	// passed CheckReplacement.
	Expand(text Text, span MatchSpan, replacement string) []byte
}

type compileFunc func(SearchQuery) (Matcher, error)

// variants holds the matcher implementations compiled into this build.
var variants = map[Mode]compileFunc{
	ModeLiteral: compileLiteral,
}

// registerVariant makes a matcher implementation available. It is called from
// init functions of optional variants.
func registerVariant(mode Mode, fn compileFunc) {
	variants[mode] = fn
}

// AvailableModes returns the search modes compiled into this build, in order.
func AvailableModes() []Mode {
	modes := make([]Mode, 0, len(variants))
	for mode := range variants {
		modes = append(modes, mode)
	}
	slices.Sort(modes)
	return modes
}

// ModeAvailable reports whether mode is compiled into this build.
func ModeAvailable(mode Mode) bool {
	_, ok := variants[mode]
	return ok
}

// Compile builds a Matcher for query.
func Compile(query SearchQuery) (Matcher, error) {
	if query.Pattern == "" {
		return nil, ErrEmptyQuery
	}
	fn, ok := variants[query.Mode]
	if !ok {
		return nil, fmt.Errorf("%v: %w", query.Mode, ErrModeUnavailable)
	}
	return fn(query)
}

// clampOffset limits from to [0, n].
func clampOffset(from, n int64) int64 {
	return min(max(from, 0), n)
}
