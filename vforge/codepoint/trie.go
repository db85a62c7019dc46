package codepoint

import (
	"unicode"
)

const (
	pageBits = 8
	pageSize = 1 << pageBits // codepoints per page
	pageMask = pageSize - 1
	numPages = (unicode.MaxRune + 1) >> pageBits // first-level index length
)

// Trie is the dense two-level lookup table from codepoint to packed
// classification value. The first level indexes 256-codepoint pages and
// identical pages are shared, which collapses the long unclassified planes
// into a single page.
type Trie struct {
	index   []uint16 // code>>pageBits -> page number
	values  []uint32 // pageNumber*pageSize + (code&pageMask) -> packed value
	invalid uint32   // sentinel for codepoints with no classification
	errval  uint32   // sentinel reporting a corrupt lookup
}

// newTrie compacts a dense table, one packed value per codepoint with the
// invalid sentinel where unclassified, into the paged form.
func newTrie(dense []uint32, invalid, errval uint32) *Trie {
	t := &Trie{
		index:   make([]uint16, numPages),
		invalid: invalid,
		errval:  errval,
	}
	seen := make(map[[pageSize]uint32]uint16)
	for pageNo := 0; pageNo < numPages; pageNo++ {
		var page [pageSize]uint32
		base := pageNo << pageBits
		for i := 0; i < pageSize; i++ {
			if code := base + i; code < len(dense) {
				page[i] = dense[code]
			} else {
				page[i] = invalid
			}
		}
		id, ok := seen[page]
		if !ok {
			id = uint16(t.pageCount())
			seen[page] = id
			t.values = append(t.values, page[:]...)
		}
		t.index[pageNo] = id
	}
	return t
}

// lookup resolves a code to its packed value. Codes past the last codepoint
// resolve to the invalid sentinel; a page reference past the value table
// resolves to the error sentinel.
func (t *Trie) lookup(code uint32) uint32 {
	pageNo := int(code >> pageBits)
	if pageNo >= len(t.index) {
		return t.invalid
	}
	off := int(t.index[pageNo])<<pageBits + int(code&pageMask)
	if off >= len(t.values) {
		return t.errval
	}
	return t.values[off]
}

// pageCount returns the number of distinct pages in the value table.
func (t *Trie) pageCount() int {
	return len(t.values) >> pageBits
}
