package codepoint

import (
	"sort"
	"unicode"
)

// FromGoTables builds a codepoint database for the named scripts out of the
// Go runtime's Unicode tables instead of reference data files. Handy for
// tests and experiments that do not need a pinned Unicode revision;
// production indexes should come from reference data so the revision is
// explicit.
func FromGoTables(scriptNames ...string) *Database {
	db := NewDatabase()
	for _, name := range scriptNames {
		tab, ok := unicode.Scripts[name]
		if !ok {
			continue
		}
		eachRune(tab, func(code rune) {
			db.Add(Record{Code: code, Category: categoryOf(code), Script: name})
		})
	}
	return db
}

// GoScriptNames returns every script name known to the Go runtime, sorted.
func GoScriptNames() []string {
	names := make([]string, 0, len(unicode.Scripts))
	for name := range unicode.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllValidTable synthesizes a property table marking every database codepoint
// PVALID, coalescing contiguous codes into ranges. A permissive stand-in for
// runs without a reference property table.
func AllValidTable(db *Database) []PropertyRange {
	codes := db.Codes()
	var table []PropertyRange
	for i := 0; i < len(codes); {
		j := i
		for j+1 < len(codes) && codes[j+1] == codes[j]+1 {
			j++
		}
		table = append(table, PropertyRange{Lo: codes[i], Hi: codes[j], Property: PropertyPVALID})
		i = j + 1
	}
	return table
}

// goCategoryNames is the two-letter subset of unicode.Categories, sorted once
// so category resolution is deterministic.
var goCategoryNames = func() []string {
	names := make([]string, 0, len(unicode.Categories))
	for name := range unicode.Categories {
		if len(name) == 2 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}()

// categoryOf resolves the two-letter general category of a codepoint.
func categoryOf(code rune) string {
	for _, name := range goCategoryNames {
		if unicode.Is(unicode.Categories[name], code) {
			return name
		}
	}
	return CategoryUnassigned
}

// eachRune visits every rune of a range table in ascending order.
func eachRune(tab *unicode.RangeTable, visit func(rune)) {
	for _, r := range tab.R16 {
		for code := rune(r.Lo); code <= rune(r.Hi); code += rune(r.Stride) {
			visit(code)
		}
	}
	for _, r := range tab.R32 {
		for code := rune(r.Lo); code <= rune(r.Hi); code += rune(r.Stride) {
			visit(code)
		}
	}
}
