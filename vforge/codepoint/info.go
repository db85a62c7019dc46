// Package codepoint builds and reads the packed Unicode classification index:
// a paged trie mapping every codepoint to its validity property, script, and
// general category, persisted as a binary blob plus a metadata sidecar.
package codepoint

import (
	"sort"
)

// Validity property names as they appear in the reference property table.
// Rows carrying PropertyUnassigned are dropped before indexing.
const (
	PropertyPVALID     = "PVALID"
	PropertyContextJ   = "CONTEXTJ"
	PropertyContextO   = "CONTEXTO"
	PropertyDisallowed = "DISALLOWED"
	PropertyUnassigned = "UNASSIGNED"
)

// General category codes referenced throughout generation.
const (
	CategoryLowercaseLetter = "Ll"
	CategoryNonspacingMark  = "Mn"
	CategoryUnassigned      = "Cn"
)

// CodepointInfo is the resolved classification of a single codepoint.
// Immutable once the index is built.
type CodepointInfo struct {
	Code     rune
	Category string
	Script   string
	Property string
}

// Record is one row of the codepoint database: the general category and
// script the reference data assigns to a codepoint.
type Record struct {
	Code     rune
	Category string
	Script   string
}

// PropertyRange annotates an inclusive codepoint range with a validity
// property. A single-codepoint row has Lo == Hi.
type PropertyRange struct {
	Lo       rune
	Hi       rune
	Property string
}

// Database is the in-memory codepoint database consumed by Build: one Record
// per assigned codepoint, addressable by code.
type Database struct {
	records map[rune]Record
}

// NewDatabase returns an empty codepoint database.
func NewDatabase() *Database {
	return &Database{records: make(map[rune]Record)}
}

// Add inserts or replaces the record for rec.Code.
func (db *Database) Add(rec Record) {
	db.records[rec.Code] = rec
}

// Get returns the record for code, if present.
func (db *Database) Get(code rune) (Record, bool) {
	rec, ok := db.records[code]
	return rec, ok
}

// Len returns the number of records in the database.
func (db *Database) Len() int {
	return len(db.records)
}

// Codes returns every recorded codepoint in ascending order.
func (db *Database) Codes() []rune {
	codes := make([]rune, 0, len(db.records))
	for code := range db.records {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
