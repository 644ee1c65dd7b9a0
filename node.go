package edcore

import (
	"sort"
	"unicode/utf8"
)

// maxLeafBytes caps the size of a leaf. Inserts that would grow a leaf past it
// split the text into several leaves; joins merge neighbours that fit.
const maxLeafBytes = 4096

// node is an immutable rope node. Mutations build new nodes along the edited
// path and share everything else, so a node can be read after it was replaced.
type node struct {
	// For internal nodes: both children are non-nil.
	left  *node
	right *node

	// For leaf nodes: the text and the offsets of each '\n' within it.
	data     []byte
	newlines []int32

	// Weights (aggregated for internal nodes, direct for leaf nodes)
	byteCount int64
	runeCount int64
	lineCount int64 // number of newlines

	height int
}

// newLeaf creates a leaf holding data. The slice is owned by the leaf from
// here on; callers must not modify it afterwards.
func newLeaf(data []byte) *node {
	n := &node{
		data:      data,
		byteCount: int64(len(data)),
		runeCount: int64(utf8.RuneCount(data)),
		height:    1,
	}
	for i, b := range data {
		if b == '\n' {
			n.newlines = append(n.newlines, int32(i))
		}
	}
	n.lineCount = int64(len(n.newlines))
	return n
}

// newInternal joins two subtrees without rebalancing.
func newInternal(left, right *node) *node {
	h := left.height
	if right.height > h {
		h = right.height
	}
	return &node{
		left:      left,
		right:     right,
		byteCount: left.byteCount + right.byteCount,
		runeCount: left.runeCount + right.runeCount,
		lineCount: left.lineCount + right.lineCount,
		height:    h + 1,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

// balance returns left height minus right height.
func (n *node) balance() int {
	if n.isLeaf() {
		return 0
	}
	return n.left.height - n.right.height
}

// newlinesBefore counts the leaf's newlines at byte offsets < pos.
func (n *node) newlinesBefore(pos int64) int64 {
	return int64(sort.Search(len(n.newlines), func(i int) bool {
		return int64(n.newlines[i]) >= pos
	}))
}

// buildLeaves splits data into leaves of at most maxLeafBytes, cutting only at
// rune boundaries, and joins them into a balanced subtree.
func buildLeaves(data []byte) *node {
	if len(data) == 0 {
		return nil
	}
	var leaves []*node
	for len(data) > 0 {
		cut := len(data)
		if cut > maxLeafBytes {
			cut = int(alignToRuneBoundary(data, maxLeafBytes))
			if cut == 0 {
				cut = maxLeafBytes
			}
		}
		chunk := make([]byte, cut)
		copy(chunk, data[:cut])
		leaves = append(leaves, newLeaf(chunk))
		data = data[cut:]
	}
	return buildBalanced(leaves)
}

// buildBalanced rebuilds a balanced tree from an ordered slice of leaves.
func buildBalanced(leaves []*node) *node {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}
	mid := len(leaves) / 2
	return newInternal(buildBalanced(leaves[:mid]), buildBalanced(leaves[mid:]))
}

// alignToRuneBoundary adjusts a byte position to not split a UTF-8 character.
// Returns the nearest valid byte position (same or earlier).
func alignToRuneBoundary(data []byte, pos int64) int64 {
	if pos <= 0 || pos >= int64(len(data)) {
		return pos
	}
	for pos > 0 && !utf8.RuneStart(data[pos]) {
		pos--
	}
	return pos
}
