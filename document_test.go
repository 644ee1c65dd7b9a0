package edcore

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ====================
// Construction and access
// ====================

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLen   int64
		wantRunes int64
		wantLines int64
	}{
		{"empty", "", 0, 0, 1},
		{"single_line", "hello", 5, 5, 1},
		{"trailing_newline", "a\nb\n", 4, 4, 3},
		{"unicode", "héllo 世界", 13, 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(tt.text)
			assert.Equal(t, tt.wantLen, doc.Len())
			assert.Equal(t, tt.wantRunes, doc.RuneCount())
			assert.Equal(t, tt.wantLines, doc.LineCount())
			assert.Equal(t, tt.text, doc.String())
		})
	}
}

func TestNewDocumentNormalizesInvalidUTF8(t *testing.T) {
	doc := NewDocument("a\xffb")
	assert.Equal(t, "a�b", doc.String())
	assert.Equal(t, int64(3), doc.RuneCount())
}

func TestBytesCacheSurvivesMutation(t *testing.T) {
	doc := NewDocument("abc")
	before := doc.Bytes()
	require.NoError(t, doc.InsertString(1, "XYZ"))

	assert.Equal(t, "abc", string(before))
	assert.Equal(t, "aXYZbc", string(doc.Bytes()))
}

// ====================
// Insert / Delete
// ====================

func TestInsertErrors(t *testing.T) {
	doc := NewDocument("héllo")
	before := doc.String()

	tests := []struct {
		name    string
		offset  int64
		text    string
		wantErr error
	}{
		{"negative", -1, "x", ErrOutOfBounds},
		{"past_end", 7, "x", ErrOutOfBounds},
		{"inside_rune", 2, "x", ErrInvalidBoundary},
		{"invalid_utf8", 0, "\xff", ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := doc.InsertString(tt.offset, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, doc.String())
		})
	}
}

func TestDeleteErrors(t *testing.T) {
	doc := NewDocument("héllo")
	before := doc.String()

	tests := []struct {
		name       string
		start, end int64
		wantErr    error
	}{
		{"reversed", 3, 1, ErrInvalidRange},
		{"past_end", 0, 7, ErrOutOfBounds},
		{"negative", -1, 2, ErrOutOfBounds},
		{"splits_rune", 0, 2, ErrInvalidBoundary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, doc.Delete(tt.start, tt.end), tt.wantErr)
			assert.Equal(t, before, doc.String())
		})
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	base := "first line\nsecond 世界\nthird"
	texts := []string{"", "x", "\n", "multi\nline\n", "é", strings.Repeat("long ", 2000)}

	doc := NewDocument(base)
	for off := int64(0); off <= doc.Len(); off++ {
		if !doc.IsBoundary(off) {
			continue
		}
		for _, text := range texts {
			require.NoError(t, doc.InsertString(off, text))
			require.NoError(t, doc.Delete(off, off+int64(len(text))))
			require.Equal(t, base, doc.String(), "offset %d text %q", off, text)
		}
	}
}

func TestSliceCopies(t *testing.T) {
	doc := NewDocument("hello world")
	b, err := doc.Slice(0, 5)
	require.NoError(t, err)
	b[0] = 'J'
	assert.Equal(t, "hello world", doc.String())
}

// ====================
// Line index
// ====================

func TestLineOfAndOffsetOf(t *testing.T) {
	doc := NewDocument("ab\nc世d\n\nend")

	tests := []struct {
		name         string
		offset       int64
		line, column int64
	}{
		{"start", 0, 0, 0},
		{"newline_of_first", 2, 0, 2},
		{"second_line", 3, 1, 0},
		{"after_wide_rune", 7, 1, 2},
		{"empty_line", 9, 2, 0},
		{"last_line", 10, 3, 0},
		{"end", 13, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := doc.LineOf(tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)

			off, err := doc.OffsetOf(tt.line, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.offset, off)

			pos, err := doc.Position(tt.offset)
			require.NoError(t, err)
			assert.Equal(t, Position{Line: tt.line, Column: tt.column}, pos)
		})
	}
}

func TestLineErrors(t *testing.T) {
	doc := NewDocument("ab\ncd")

	_, err := doc.LineOf(6)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = doc.OffsetOf(2, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = doc.OffsetOf(0, 3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = doc.OffsetOf(0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestLineAccessors(t *testing.T) {
	doc := NewDocument("one\ntwo\n")

	line, err := doc.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	line, err = doc.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "", line)

	start, err := doc.LineStart(1)
	require.NoError(t, err)
	end, err := doc.LineEnd(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), start)
	assert.Equal(t, int64(7), end)
}

func TestLineIndexStaysConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pieces := []string{"x", "\n", "ab\ncd", "世", "\n\n", strings.Repeat("q", 3000) + "\n"}
	doc := NewDocument("")

	for i := 0; i < 500; i++ {
		if doc.Len() > 0 && rng.Intn(3) == 0 {
			start := rng.Int63n(doc.Len())
			for !doc.IsBoundary(start) {
				start--
			}
			end := min(start+rng.Int63n(4000), doc.Len())
			for !doc.IsBoundary(end) {
				end++
			}
			require.NoError(t, doc.Delete(start, end))
		} else {
			off := int64(0)
			if doc.Len() > 0 {
				off = rng.Int63n(doc.Len() + 1)
			}
			for !doc.IsBoundary(off) {
				off--
			}
			require.NoError(t, doc.InsertString(off, pieces[rng.Intn(len(pieces))]))
		}

		text := doc.String()
		require.Equal(t, int64(strings.Count(text, "\n")+1), doc.LineCount())
		if i%25 != 0 {
			continue
		}
		line := int64(0)
		for off := 0; off <= len(text); off++ {
			got, err := doc.LineOf(int64(off))
			require.NoError(t, err)
			require.Equal(t, line, got, "offset %d", off)
			if off < len(text) && text[off] == '\n' {
				line++
				start, err := doc.LineStart(line)
				require.NoError(t, err)
				require.Equal(t, int64(off+1), start)
			}
		}
	}
}

// ====================
// Addressing and conversion
// ====================

func TestResolve(t *testing.T) {
	doc := NewDocument("aé\n世b")

	tests := []struct {
		name string
		addr Address
		want int64
	}{
		{"byte", ByteAddress(3), 3},
		{"rune", RuneAddress(2), 3},
		{"rune_after_wide", RuneAddress(4), 7},
		{"line_column", LineAddress(1, 1), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.Resolve(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := doc.Resolve(ByteAddress(2))
	assert.ErrorIs(t, err, ErrInvalidBoundary)
	_, err = doc.Resolve(RuneAddress(6))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRuneConversions(t *testing.T) {
	doc := NewDocument("aé世")
	for r, off := range []int64{0, 1, 3, 6} {
		got, err := doc.RuneToOffset(int64(r))
		require.NoError(t, err)
		assert.Equal(t, off, got)

		back, err := doc.OffsetToRune(off)
		require.NoError(t, err)
		assert.Equal(t, int64(r), back)
	}
	assert.Equal(t, int64(3), doc.NextRune(1))
	assert.Equal(t, int64(6), doc.NextRune(6))
}

// ====================
// Maintenance
// ====================

func TestStatsAndRebalance(t *testing.T) {
	doc := NewDocument("")
	for i := 0; i < 500; i++ {
		require.NoError(t, doc.InsertString(0, strings.Repeat("w", 100)+"\n"))
	}
	before := doc.String()
	stats := doc.Stats()
	assert.Equal(t, doc.Len(), stats.Bytes)
	assert.Equal(t, int64(501), stats.Lines)
	assert.Greater(t, stats.Leaves, 1)

	doc.Rebalance()
	checkTree(t, doc.root)
	assert.Equal(t, before, doc.String())
	assert.LessOrEqual(t, doc.Stats().Height, stats.Height)
}
