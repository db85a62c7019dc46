package catalog

import (
	"sort"

	roaring "github.com/RoaringBitmap/roaring"
)

// CategoryBitmaps holds roaring bitmaps keyed by general category name.
// Example: "Ll" -> bitmap of codepoints classified lowercase letter.
type CategoryBitmaps struct {
	byCategory map[string]*roaring.Bitmap
}

func NewCategoryBitmaps() *CategoryBitmaps {
	return &CategoryBitmaps{byCategory: make(map[string]*roaring.Bitmap)}
}

// Add marks code as belonging to category.
func (cb *CategoryBitmaps) Add(category string, code uint32) {
	bm, ok := cb.byCategory[category]
	if !ok {
		bm = roaring.New()
		cb.byCategory[category] = bm
	}
	bm.Add(code)
}

// Union returns a fresh bitmap holding the union of the named categories.
func (cb *CategoryBitmaps) Union(categories ...string) *roaring.Bitmap {
	res := roaring.New()
	for _, name := range categories {
		if bm, ok := cb.byCategory[name]; ok {
			res.Or(bm)
		}
	}
	return res
}

// Cardinality returns the number of codepoints recorded for category.
func (cb *CategoryBitmaps) Cardinality(category string) uint64 {
	bm, ok := cb.byCategory[category]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

// Categories returns the recorded category names, sorted.
func (cb *CategoryBitmaps) Categories() []string {
	names := make([]string, 0, len(cb.byCategory))
	for name := range cb.byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
