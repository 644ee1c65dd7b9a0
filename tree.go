package edcore

import "unicode/utf8"

// leafHit describes the leaf found for an absolute byte position.
type leafHit struct {
	leaf      *node
	offset    int64 // byte offset from start of the leaf to the target
	leafStart int64 // absolute byte position where the leaf starts
	runeStart int64 // absolute rune position where the leaf starts
	lineStart int64 // newlines before the leaf
}

// findLeaf navigates to the leaf containing pos. pos == byteCount resolves to
// the end of the last leaf.
func findLeaf(n *node, pos int64) (leafHit, bool) {
	if n == nil || pos < 0 || pos > n.byteCount {
		return leafHit{}, false
	}
	var hit leafHit
	for !n.isLeaf() {
		// Use < so that a position on a leaf boundary resolves to the right
		// subtree, except at the very end of the document.
		if pos < n.left.byteCount || pos == n.byteCount && n.right.byteCount == 0 {
			n = n.left
			continue
		}
		pos -= n.left.byteCount
		hit.leafStart += n.left.byteCount
		hit.runeStart += n.left.runeCount
		hit.lineStart += n.left.lineCount
		n = n.right
	}
	if pos > n.byteCount {
		return leafHit{}, false
	}
	hit.leaf = n
	hit.offset = pos
	return hit, true
}

// join concatenates two subtrees, keeping AVL balance. Adjacent leaves that fit
// in one leaf are merged.
func join(l, r *node) *node {
	if l == nil || l.byteCount == 0 && l.isLeaf() {
		return r
	}
	if r == nil || r.byteCount == 0 && r.isLeaf() {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.byteCount+r.byteCount <= maxLeafBytes {
		merged := make([]byte, 0, l.byteCount+r.byteCount)
		merged = append(merged, l.data...)
		merged = append(merged, r.data...)
		return newLeaf(merged)
	}
	switch {
	case l.height > r.height+1:
		return rebalance(newInternal(l.left, join(l.right, r)))
	case r.height > l.height+1:
		return rebalance(newInternal(join(l, r.left), r.right))
	}
	return newInternal(l, r)
}

// rebalance restores the AVL property at n after one of its children changed
// height by at most two.
func rebalance(n *node) *node {
	if n.isLeaf() {
		return n
	}
	b := n.balance()
	if b > 1 {
		left := n.left
		if left.balance() < 0 {
			left = rotateLeft(left)
		}
		return rotateRight(newInternal(left, n.right))
	}
	if b < -1 {
		right := n.right
		if right.balance() > 0 {
			right = rotateRight(right)
		}
		return rotateLeft(newInternal(n.left, right))
	}
	return n
}

// rotateRight performs a right rotation.
func rotateRight(n *node) *node {
	if n.isLeaf() || n.left.isLeaf() {
		return n
	}
	// Left's right child becomes node's new left child; left becomes the new parent.
	l := n.left
	return newInternal(l.left, newInternal(l.right, n.right))
}

// rotateLeft performs a left rotation.
func rotateLeft(n *node) *node {
	if n.isLeaf() || n.right.isLeaf() {
		return n
	}
	r := n.right
	return newInternal(newInternal(n.left, r.left), r.right)
}

// insertAt returns a new tree with data inserted at byte position pos.
// pos must already be validated.
func insertAt(n *node, pos int64, data []byte) *node {
	if n == nil {
		return buildLeaves(data)
	}
	if n.isLeaf() {
		if n.byteCount+int64(len(data)) <= maxLeafBytes {
			merged := make([]byte, 0, n.byteCount+int64(len(data)))
			merged = append(merged, n.data[:pos]...)
			merged = append(merged, data...)
			merged = append(merged, n.data[pos:]...)
			return newLeaf(merged)
		}
		var left, right *node
		if pos > 0 {
			left = newLeaf(n.data[:pos:pos])
		}
		if pos < n.byteCount {
			right = newLeaf(n.data[pos:])
		}
		return join(join(left, buildLeaves(data)), right)
	}
	// Prefer the left subtree at an exact boundary so that typing at the end of
	// a leaf grows that leaf instead of creating a new one.
	if pos <= n.left.byteCount {
		return join(insertAt(n.left, pos, data), n.right)
	}
	return join(n.left, insertAt(n.right, pos-n.left.byteCount, data))
}

// deleteRange returns a new tree without the bytes in [start, end).
func deleteRange(n *node, start, end int64) *node {
	if n == nil || start >= end || end <= 0 || start >= n.byteCount {
		return n
	}
	if start <= 0 && end >= n.byteCount {
		return nil
	}
	if n.isLeaf() {
		if start < 0 {
			start = 0
		}
		if end > n.byteCount {
			end = n.byteCount
		}
		kept := make([]byte, 0, n.byteCount-(end-start))
		kept = append(kept, n.data[:start]...)
		kept = append(kept, n.data[end:]...)
		return newLeaf(kept)
	}
	lb := n.left.byteCount
	left, right := n.left, n.right
	if start < lb {
		left = deleteRange(n.left, start, end)
	}
	if end > lb {
		right = deleteRange(n.right, start-lb, end-lb)
	}
	return join(left, right)
}

// byteAt returns the byte at pos. pos must be < byteCount.
func byteAt(n *node, pos int64) byte {
	hit, ok := findLeaf(n, pos)
	if !ok || hit.offset >= hit.leaf.byteCount {
		return 0
	}
	return hit.leaf.data[hit.offset]
}

// newlinesBefore counts newlines at byte offsets < pos.
func newlinesBefore(n *node, pos int64) int64 {
	var count int64
	for n != nil && !n.isLeaf() {
		if pos <= n.left.byteCount {
			n = n.left
			continue
		}
		count += n.left.lineCount
		pos -= n.left.byteCount
		n = n.right
	}
	if n == nil {
		return count
	}
	return count + n.newlinesBefore(pos)
}

// lineStartOffset returns the byte offset where line (0-indexed) begins, i.e.
// one past the line-th newline. line must be in [1, lineCount].
func lineStartOffset(n *node, line int64) int64 {
	var offset int64
	for !n.isLeaf() {
		// Use <= because if left has N newlines, the Nth newline is in the left subtree.
		if line <= n.left.lineCount {
			n = n.left
			continue
		}
		line -= n.left.lineCount
		offset += n.left.byteCount
		n = n.right
	}
	return offset + int64(n.newlines[line-1]) + 1
}

// runesBefore counts runes in [0, pos). pos must be a rune boundary.
func runesBefore(n *node, pos int64) int64 {
	hit, ok := findLeaf(n, pos)
	if !ok {
		return 0
	}
	return hit.runeStart + int64(utf8.RuneCount(hit.leaf.data[:hit.offset]))
}

// runeOffset converts an absolute rune index into a byte offset.
func runeOffset(n *node, r int64) int64 {
	var offset int64
	for n != nil && !n.isLeaf() {
		if r < n.left.runeCount {
			n = n.left
			continue
		}
		r -= n.left.runeCount
		offset += n.left.byteCount
		n = n.right
	}
	if n == nil {
		return offset
	}
	return offset + runeToByteOffset(n.data, r)
}

// appendRange appends the bytes in [start, end) to dst.
func appendRange(dst []byte, n *node, start, end int64) []byte {
	if n == nil || start >= end || end <= 0 || start >= n.byteCount {
		return dst
	}
	if n.isLeaf() {
		if start < 0 {
			start = 0
		}
		if end > n.byteCount {
			end = n.byteCount
		}
		return append(dst, n.data[start:end]...)
	}
	lb := n.left.byteCount
	dst = appendRange(dst, n.left, start, end)
	return appendRange(dst, n.right, start-lb, end-lb)
}

// collectLeaves gathers all leaves in order.
func collectLeaves(n *node, leaves []*node) []*node {
	if n == nil {
		return leaves
	}
	if n.isLeaf() {
		if n.byteCount > 0 {
			leaves = append(leaves, n)
		}
		return leaves
	}
	leaves = collectLeaves(n.left, leaves)
	return collectLeaves(n.right, leaves)
}

// runeToByteOffset converts a rune offset to a byte offset within data.
func runeToByteOffset(data []byte, runeOffset int64) int64 {
	if runeOffset <= 0 {
		return 0
	}
	var bytePos, runeCount int64
	for bytePos < int64(len(data)) && runeCount < runeOffset {
		_, size := utf8.DecodeRune(data[bytePos:])
		bytePos += int64(size)
		runeCount++
	}
	return bytePos
}
