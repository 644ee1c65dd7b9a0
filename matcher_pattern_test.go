//go:build !edcore_literal

package edcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compilePatternQuery(t *testing.T, pattern string, caseSensitive, wholeWord bool) Matcher {
	t.Helper()
	m, err := Compile(SearchQuery{
		Pattern:       pattern,
		Mode:          ModePattern,
		CaseSensitive: caseSensitive,
		WholeWord:     wholeWord,
	})
	require.NoError(t, err)
	return m
}

func TestPatternCapability(t *testing.T) {
	assert.Equal(t, []Mode{ModeLiteral, ModePattern}, AvailableModes())
	assert.True(t, ModeAvailable(ModePattern))
}

func TestPatternInvalid(t *testing.T) {
	for _, pattern := range []string{"a(b", "*x", `\p{Nope}`, "a)|(b"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Compile(SearchQuery{Pattern: pattern, Mode: ModePattern})
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestPatternFindForward(t *testing.T) {
	doc := NewDocument("a12b345c")
	m := compilePatternQuery(t, `\d+`, true, false)

	spans := allForward(m, doc)
	require.Len(t, spans, 2)
	assert.Equal(t, int64(1), spans[0].Start)
	assert.Equal(t, int64(3), spans[0].End)
	assert.Equal(t, int64(4), spans[1].Start)
	assert.Equal(t, int64(7), spans[1].End)
}

func TestPatternFindForwardMidMatch(t *testing.T) {
	doc := NewDocument("aaa")
	m := compilePatternQuery(t, "aa", true, false)

	span, ok := m.FindForward(doc, 1)
	require.True(t, ok)
	assert.Equal(t, int64(1), span.Start)
	assert.Equal(t, int64(3), span.End)
}

func TestPatternContextAtSearchStart(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		from    int64
		want    int64
		found   bool
	}{
		{"line_anchor_mid_line", "abc\nabc", "^abc", 1, 4, true},
		{"line_anchor_at_line_start", "abc\nabc", "^abc", 4, 4, true},
		{"word_boundary_mid_word", "foobar bar", `\bbar`, 3, 7, true},
		{"non_boundary_mid_word", "foobar", `\Bbar`, 3, 3, true},
		{"text_anchor", "abc abc", `\Aabc`, 1, 0, false},
		{"line_end", "ab\ncd", "b$", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compilePatternQuery(t, tt.pattern, true, false)
			span, ok := m.FindForward(NewDocument(tt.text), tt.from)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, span.Start)
			}
		})
	}
}

func TestPatternFindBackward(t *testing.T) {
	doc := NewDocument("x1 y22 z333")
	m := compilePatternQuery(t, `\d+`, true, false)

	var starts []int64
	for from := doc.Len(); ; {
		span, ok := m.FindBackward(doc, from)
		if !ok {
			break
		}
		starts = append(starts, span.Start)
		from = span.Start
	}
	// Every start position of a match is visited, nearest first.
	assert.Equal(t, []int64{10, 9, 8, 5, 4, 1}, starts)
}

func TestPatternFindBackwardEndOfText(t *testing.T) {
	doc := NewDocument("ab\ncd")
	m := compilePatternQuery(t, `$`, true, false)

	span, ok := m.FindBackward(doc, doc.Len()+1)
	require.True(t, ok)
	assert.Equal(t, int64(5), span.Start)
	assert.True(t, span.Empty())

	span, ok = m.FindBackward(doc, doc.Len())
	require.True(t, ok)
	assert.Equal(t, int64(2), span.Start)

	span, ok = m.FindBackward(NewDocument(""), 1)
	require.True(t, ok)
	assert.Equal(t, int64(0), span.Start)
}

func TestPatternNumGroups(t *testing.T) {
	assert.Equal(t, 0, compilePatternQuery(t, `\d+`, true, false).NumGroups())
	assert.Equal(t, 2, compilePatternQuery(t, `(?P<k>\w+)=(\w+)`, true, false).NumGroups())
	assert.Equal(t, 1, compilePatternQuery(t, `(a)`, true, true).NumGroups(), "whole-word wrapper adds no group")
}

func TestPatternFindBackwardAcrossWindows(t *testing.T) {
	text := "needle\n"
	for i := 0; i < 3000; i++ {
		text += "filler line without the word\n"
	}
	doc := NewDocument(text)
	m := compilePatternQuery(t, "^needle$", true, false)

	span, ok := m.FindBackward(doc, doc.Len())
	require.True(t, ok)
	assert.Equal(t, int64(0), span.Start)
	assert.Equal(t, int64(6), span.End)
}

func TestPatternZeroWidthProgress(t *testing.T) {
	doc := NewDocument("ab\n世c")
	m := compilePatternQuery(t, "b|", true, false)

	spans := allForward(m, doc)
	starts := spanStarts(spans)
	for i := 1; i < len(starts); i++ {
		assert.Greater(t, starts[i], starts[i-1])
	}
	for _, s := range spans {
		assert.True(t, doc.IsBoundary(s.Start))
		assert.True(t, doc.IsBoundary(s.End))
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 6, 7}, starts)
}

func TestPatternCaseFold(t *testing.T) {
	doc := NewDocument("Error ERROR error")
	m := compilePatternQuery(t, "error", false, false)
	assert.Len(t, allForward(m, doc), 3)

	m = compilePatternQuery(t, "error", true, false)
	assert.Len(t, allForward(m, doc), 1)
}

func TestPatternWholeWord(t *testing.T) {
	doc := NewDocument("cat concat cats cat")
	m := compilePatternQuery(t, "cat|dog", true, true)

	assert.Equal(t, []int64{0, 16}, spanStarts(allForward(m, doc)))
}

func TestPatternExpand(t *testing.T) {
	doc := NewDocument("John Smith, Jane Doe")
	m := compilePatternQuery(t, `(?P<first>\w+) (\w+)`, true, false)

	span, ok := m.FindForward(doc, 5)
	require.True(t, ok)
	assert.Equal(t, int64(12), span.Start)

	tests := []struct {
		template string
		want     string
	}{
		{"$2, ${first}", "Doe, Jane"},
		{"$$2", "$2"},
		{"${2}x", "Doex"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			require.NoError(t, m.CheckReplacement(tt.template))
			assert.Equal(t, tt.want, string(m.Expand(doc, span, tt.template)))
		})
	}
}

func TestPatternGroupValidation(t *testing.T) {
	m := compilePatternQuery(t, `(?P<word>\w+)-(\d)`, true, false)

	for _, ok := range []string{"$0", "$1", "$2", "${word}", "$word", "$$3", "cost $", "${", "$-"} {
		assert.NoError(t, m.CheckReplacement(ok), ok)
	}
	for _, bad := range []string{"$3", "${missing}", "$1x", "${10}"} {
		assert.ErrorIs(t, m.CheckReplacement(bad), ErrInvalidGroupReference, bad)
	}
}
