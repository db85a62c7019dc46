package codepoint

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"unicode"
)

var (
	// ErrNoCodepoints reports a build attempted against an empty codepoint
	// database.
	ErrNoCodepoints = errors.New("codepoint database is empty")

	// ErrFieldOverflow reports enumerations too large for the packed layout.
	ErrFieldOverflow = errors.New("packed field layout exceeds 32 bits")
)

// fieldBits returns the width needed to index n enumeration values:
// floor(log2(n-1)) + 1, with a single-value enumeration taking no bits.
func fieldBits(n int) uint32 {
	if n <= 1 {
		return 0
	}
	return uint32(bits.Len(uint(n - 1)))
}

// Build constructs the index from the codepoint database and the validity
// property table. Table rows carrying PropertyUnassigned are dropped, and
// codepoints named by the table but absent from the database are skipped:
// the two sources ship on different schedules and do not always agree.
func Build(db *Database, table []PropertyRange) (*Index, error) {
	if db == nil || db.Len() == 0 {
		return nil, ErrNoCodepoints
	}

	codes := db.Codes()

	// Discover categories and scripts across the whole database, in
	// ascending codepoint order.
	var (
		categories  []string
		catIndex    = make(map[string]uint32)
		scripts     []*ScriptRecord
		scriptIndex = make(map[string]*ScriptRecord)
	)
	for _, code := range codes {
		rec, _ := db.Get(code)
		if _, ok := catIndex[rec.Category]; !ok {
			catIndex[rec.Category] = uint32(len(categories))
			categories = append(categories, rec.Category)
		}
		sr, ok := scriptIndex[rec.Script]
		if !ok {
			sr = &ScriptRecord{
				Name:      rec.Script,
				Index:     uint32(len(scripts)),
				FirstCode: uint32(code),
				LastCode:  uint32(code),
			}
			scriptIndex[rec.Script] = sr
			scripts = append(scripts, sr)
			continue
		}
		if uint32(code) > sr.LastCode {
			sr.LastCode = uint32(code)
		}
	}

	// Discover properties from the table in row order, after dropping
	// unassigned rows.
	var (
		kept       []PropertyRange
		properties []string
		propIndex  = make(map[string]uint32)
	)
	for _, pr := range table {
		if pr.Property == PropertyUnassigned {
			continue
		}
		if _, ok := propIndex[pr.Property]; !ok {
			propIndex[pr.Property] = uint32(len(properties))
			properties = append(properties, pr.Property)
		}
		kept = append(kept, pr)
	}

	meta := &Metadata{
		Version:      FormatVersion,
		Categories:   categories,
		Properties:   properties,
		PropertyBits: fieldBits(len(properties)),
		ScriptBits:   fieldBits(len(scripts)),
		CategoryBits: fieldBits(len(categories)),
	}
	meta.PropertyShift = 0
	meta.ScriptShift = meta.PropertyBits
	meta.CategoryShift = meta.PropertyBits + meta.ScriptBits
	total := meta.CategoryShift + meta.CategoryBits
	// Two sentinel bits sit above the category field and must fit in uint32.
	if total+1 >= 32 {
		return nil, fmt.Errorf("%w: %d value bits plus two sentinels", ErrFieldOverflow, total)
	}
	meta.InvalidValue = 1 << total
	meta.ErrorValue = 1 << (total + 1)

	// Fill a dense table, then compact it into shared pages.
	dense := make([]uint32, unicode.MaxRune+1)
	for i := range dense {
		dense[i] = meta.InvalidValue
	}
	indexed := 0
	skipped := 0
	for _, pr := range kept {
		propIdx := propIndex[pr.Property]
		for code := pr.Lo; code <= pr.Hi; code++ {
			rec, ok := db.Get(code)
			if !ok {
				skipped++
				continue
			}
			sr := scriptIndex[rec.Script]
			packed := propIdx<<meta.PropertyShift |
				sr.Index<<meta.ScriptShift |
				catIndex[rec.Category]<<meta.CategoryShift
			if dense[code] == meta.InvalidValue {
				sr.Count++
				indexed++
			}
			dense[code] = packed
		}
	}

	records := make([]ScriptRecord, len(scripts))
	for i, sr := range scripts {
		records[i] = *sr
	}
	meta.Scripts = records

	trie := newTrie(dense, meta.InvalidValue, meta.ErrorValue)

	slog.Debug("Codepoint index build completed",
		"indexed_codepoints", indexed,
		"skipped_codepoints", skipped,
		"categories", len(categories),
		"scripts", len(scripts),
		"properties", len(properties),
		"trie_pages", trie.pageCount())

	return NewIndex(trie, meta), nil
}
