package edcore

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkTree verifies weights, leaf sizes and AVL balance of every node.
func checkTree(t *testing.T, n *node) {
	t.Helper()
	if n == nil {
		return
	}
	if n.isLeaf() {
		assert.LessOrEqual(t, n.byteCount, int64(maxLeafBytes))
		assert.True(t, utf8.Valid(n.data), "leaf splits a rune")
		assert.Equal(t, int64(strings.Count(string(n.data), "\n")), n.lineCount)
		return
	}
	checkTree(t, n.left)
	checkTree(t, n.right)
	assert.Equal(t, n.left.byteCount+n.right.byteCount, n.byteCount)
	assert.Equal(t, n.left.runeCount+n.right.runeCount, n.runeCount)
	assert.Equal(t, n.left.lineCount+n.right.lineCount, n.lineCount)
	assert.LessOrEqual(t, n.balance(), 1)
	assert.GreaterOrEqual(t, n.balance(), -1)
}

func TestBuildLeavesRuneBoundaries(t *testing.T) {
	// 3-byte runes do not divide the leaf size evenly.
	text := strings.Repeat("世", maxLeafBytes)
	root := buildLeaves([]byte(text))
	checkTree(t, root)

	assert.Equal(t, int64(len(text)), root.byteCount)
	assert.Equal(t, int64(maxLeafBytes), root.runeCount)
	assert.Equal(t, text, string(appendRange(nil, root, 0, root.byteCount)))
}

func TestBuildLeavesEmpty(t *testing.T) {
	assert.Nil(t, buildLeaves(nil))
}

func TestFindLeaf(t *testing.T) {
	root := buildLeaves([]byte(strings.Repeat("a", maxLeafBytes) + "b"))
	require.False(t, root.isLeaf())

	tests := []struct {
		name       string
		pos        int64
		wantOK     bool
		wantOffset int64
		wantStart  int64
	}{
		{"start", 0, true, 0, 0},
		{"first_leaf", 10, true, 10, 0},
		{"second_leaf", maxLeafBytes, true, 0, maxLeafBytes},
		{"end", maxLeafBytes + 1, true, 1, maxLeafBytes},
		{"negative", -1, false, 0, 0},
		{"past_end", maxLeafBytes + 2, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := findLeaf(root, tt.pos)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantOffset, hit.offset)
			assert.Equal(t, tt.wantStart, hit.leafStart)
		})
	}
}

func TestInsertKeepsBalance(t *testing.T) {
	var root *node
	var want strings.Builder
	for i := 0; i < 2000; i++ {
		chunk := strings.Repeat("x", 37) + "\n"
		root = insertAt(root, root.byteCountOrZero(), []byte(chunk))
		want.WriteString(chunk)
	}
	checkTree(t, root)
	assert.Equal(t, want.String(), string(appendRange(nil, root, 0, root.byteCount)))
	assert.Equal(t, int64(2000), root.lineCount)
}

func TestDeleteRange(t *testing.T) {
	text := strings.Repeat("0123456789\n", 1000)
	root := buildLeaves([]byte(text))

	tests := []struct {
		name       string
		start, end int64
	}{
		{"inside_leaf", 5, 50},
		{"across_leaves", 4000, 9000},
		{"prefix", 0, 100},
		{"suffix", int64(len(text)) - 100, int64(len(text))},
		{"everything", 0, int64(len(text))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deleteRange(root, tt.start, tt.end)
			checkTree(t, got)
			want := text[:tt.start] + text[tt.end:]
			assert.Equal(t, want, string(appendRange(nil, got, 0, int64(len(want)))))
		})
	}
}

func TestLineLookups(t *testing.T) {
	text := strings.Repeat("line\n", 3000)
	root := buildLeaves([]byte(text))

	assert.Equal(t, int64(0), newlinesBefore(root, 0))
	assert.Equal(t, int64(0), newlinesBefore(root, 4))
	assert.Equal(t, int64(1), newlinesBefore(root, 5))
	assert.Equal(t, int64(3000), newlinesBefore(root, int64(len(text))))

	assert.Equal(t, int64(5), lineStartOffset(root, 1))
	assert.Equal(t, int64(5*2500), lineStartOffset(root, 2500))
	assert.Equal(t, int64(len(text)), lineStartOffset(root, 3000))
}

func TestRuneLookups(t *testing.T) {
	text := strings.Repeat("aé世", 2000)
	root := buildLeaves([]byte(text))

	for _, r := range []int64{0, 1, 2, 3, 1500, 5999, 6000} {
		off := runeOffset(root, r)
		assert.Equal(t, r, runesBefore(root, off), "rune %d", r)
		assert.Equal(t, int64(utf8.RuneCountInString(text[:off])), r)
	}
}

func TestRandomEditsMatchReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pieces := []string{"a", "bc", "\n", "é", "世界", "line\n", strings.Repeat("z", 900)}

	var root *node
	ref := ""
	for i := 0; i < 3000; i++ {
		if len(ref) > 0 && rng.Intn(3) == 0 {
			start := rng.Intn(len(ref))
			end := start + rng.Intn(min(len(ref)-start, 2000)+1)
			for start > 0 && !utf8.RuneStart(ref[start]) {
				start--
			}
			for end < len(ref) && !utf8.RuneStart(ref[end]) {
				end++
			}
			root = deleteRange(root, int64(start), int64(end))
			ref = ref[:start] + ref[end:]
		} else {
			pos := 0
			if len(ref) > 0 {
				pos = rng.Intn(len(ref) + 1)
			}
			for pos < len(ref) && !utf8.RuneStart(ref[pos]) {
				pos++
			}
			piece := pieces[rng.Intn(len(pieces))]
			root = insertAt(root, int64(pos), []byte(piece))
			ref = ref[:pos] + piece + ref[pos:]
		}
	}
	checkTree(t, root)
	require.Equal(t, ref, string(appendRange(nil, root, 0, int64(len(ref)))))
}

// byteCountOrZero is a nil-safe length accessor for tests.
func (n *node) byteCountOrZero() int64 {
	if n == nil {
		return 0
	}
	return n.byteCount
}
