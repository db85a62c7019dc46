package ucd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
)

// ParseUnicodeData reads a UnicodeData.txt stream and returns the general
// category per assigned codepoint. Range pairs flagged "<..., First>" and
// "<..., Last>" expand to every codepoint in between.
func ParseUnicodeData(r io.Reader) (map[rune]string, error) {
	cats := make(map[rune]string)
	p := New(r)
	rangeFirst := rune(-1)
	rangeCat := ""
	for p.Next() {
		lo, _ := p.Range()
		name := p.Field(1)
		cat := p.Field(2)
		switch {
		case strings.HasSuffix(name, ", First>"):
			rangeFirst, rangeCat = lo, cat
			continue
		case strings.HasSuffix(name, ", Last>"):
			if rangeFirst < 0 {
				return nil, fmt.Errorf("unicode data line %d: range Last without First", p.Line())
			}
			for code := rangeFirst; code <= lo; code++ {
				cats[code] = rangeCat
			}
			rangeFirst = -1
			continue
		}
		cats[lo] = cat
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse unicode data: %w", err)
	}
	return cats, nil
}

// LoadDatabase assembles the codepoint database from a UnicodeData.txt
// stream and a Scripts.txt stream. UnicodeData carries the categories,
// Scripts carries the script assignment; only codepoints present in both
// become records.
func LoadDatabase(unicodeData, scripts io.Reader) (*codepoint.Database, error) {
	cats, err := ParseUnicodeData(unicodeData)
	if err != nil {
		return nil, err
	}
	db := codepoint.NewDatabase()
	p := New(scripts)
	for p.Next() {
		lo, hi := p.Range()
		script := p.Field(1)
		if script == "" {
			return nil, fmt.Errorf("scripts line %d: row without a script name", p.Line())
		}
		for code := lo; code <= hi; code++ {
			if cat, ok := cats[code]; ok {
				db.Add(codepoint.Record{Code: code, Category: cat, Script: script})
			}
		}
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse scripts: %w", err)
	}
	return db, nil
}

// ParseDerivedProperties reads an IDNA derived property stream, rows like
// "0000..002C; DISALLOWED", into property table ranges.
func ParseDerivedProperties(r io.Reader) ([]codepoint.PropertyRange, error) {
	var table []codepoint.PropertyRange
	p := New(r)
	for p.Next() {
		lo, hi := p.Range()
		prop := p.Field(1)
		if prop == "" {
			return nil, fmt.Errorf("derived properties line %d: row without a property", p.Line())
		}
		table = append(table, codepoint.PropertyRange{Lo: lo, Hi: hi, Property: prop})
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse derived properties: %w", err)
	}
	return table, nil
}
