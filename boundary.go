package edcore

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// clusterWindow is the initial number of bytes read when looking for the end
// of a grapheme cluster. It grows when a cluster fills the window.
const clusterWindow = 64

// NextBoundary returns the offset of the grapheme cluster boundary following
// offset, or Len() at the end of the document.
func (d *Document) NextBoundary(offset int64) (int64, error) {
	if err := d.checkOffset(offset); err != nil {
		return 0, err
	}
	if offset == d.Len() {
		return offset, nil
	}
	for window := int64(clusterWindow); ; window *= 2 {
		end := min(offset+window, d.Len())
		text := appendRange(nil, d.root, offset, end)
		cluster, rest, _, _ := uniseg.FirstGraphemeCluster(text, -1)
		if len(rest) > 0 || end == d.Len() {
			return offset + int64(len(cluster)), nil
		}
	}
}

// PrevBoundary returns the offset of the grapheme cluster boundary preceding
// offset, or 0 at the start of the document.
func (d *Document) PrevBoundary(offset int64) (int64, error) {
	if err := d.checkOffset(offset); err != nil {
		return 0, err
	}
	if offset == 0 {
		return 0, nil
	}
	// A line start is always a cluster boundary.
	line := newlinesBefore(d.root, offset-1)
	start := int64(0)
	if line > 0 {
		start = lineStartOffset(d.root, line)
	}
	text := appendRange(nil, d.root, start, offset)
	prev := start
	state := -1
	pos := start
	for len(text) > 0 {
		var cluster []byte
		cluster, text, _, state = uniseg.FirstGraphemeCluster(text, state)
		prev = pos
		pos += int64(len(cluster))
	}
	return prev, nil
}

// DisplayColumn returns the terminal cell column of offset within its line.
// Tabs advance to the next multiple of tabWidth; a tabWidth below one counts
// a tab as a single cell.
func (d *Document) DisplayColumn(offset int64, tabWidth int) (int, error) {
	if err := d.checkOffset(offset); err != nil {
		return 0, err
	}
	line := newlinesBefore(d.root, offset)
	start := int64(0)
	if line > 0 {
		start = lineStartOffset(d.root, line)
	}
	text := appendRange(nil, d.root, start, offset)

	col := 0
	state := -1
	for len(text) > 0 {
		var cluster []byte
		cluster, text, _, state = uniseg.FirstGraphemeCluster(text, state)
		if len(cluster) == 1 && cluster[0] == '\t' {
			if tabWidth < 1 {
				col++
			} else {
				col += tabWidth - col%tabWidth
			}
			continue
		}
		col += runewidth.StringWidth(string(cluster))
	}
	return col, nil
}
