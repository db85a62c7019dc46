package codepoint

import (
	"errors"
	"fmt"
)

// ErrCorruptIndex reports a lookup that resolved to the reserved error
// sentinel or decoded to a field outside its enumeration. The loaded blob and
// sidecar do not describe the same build; the pair must be regenerated.
var ErrCorruptIndex = errors.New("corrupt codepoint index")

// Index is the runtime reader over the packed classification trie. Immutable
// after construction and safe for concurrent readers.
type Index struct {
	trie *Trie
	meta *Metadata

	scriptByName map[string]*ScriptRecord
}

// NewIndex wires a trie to its metadata sidecar.
func NewIndex(trie *Trie, meta *Metadata) *Index {
	ix := &Index{
		trie:         trie,
		meta:         meta,
		scriptByName: make(map[string]*ScriptRecord, len(meta.Scripts)),
	}
	for i := range meta.Scripts {
		sr := &meta.Scripts[i]
		ix.scriptByName[sr.Name] = sr
	}
	return ix
}

// Lookup resolves a codepoint to its classification. A nil info with a nil
// error means the codepoint has no classification, the normal outcome for
// unassigned or unindexed codepoints.
func (ix *Index) Lookup(code rune) (*CodepointInfo, error) {
	v := ix.trie.lookup(uint32(code))
	switch v {
	case ix.meta.InvalidValue:
		return nil, nil
	case ix.meta.ErrorValue:
		return nil, fmt.Errorf("%w: lookup of %#U hit the error sentinel", ErrCorruptIndex, code)
	}
	prop := v >> ix.meta.PropertyShift & mask(ix.meta.PropertyBits)
	script := v >> ix.meta.ScriptShift & mask(ix.meta.ScriptBits)
	cat := v >> ix.meta.CategoryShift & mask(ix.meta.CategoryBits)
	if int(prop) >= len(ix.meta.Properties) ||
		int(script) >= len(ix.meta.Scripts) ||
		int(cat) >= len(ix.meta.Categories) {
		return nil, fmt.Errorf("%w: packed value %#x for %#U decodes outside the enumerations", ErrCorruptIndex, v, code)
	}
	return &CodepointInfo{
		Code:     code,
		Category: ix.meta.Categories[cat],
		Script:   ix.meta.Scripts[script].Name,
		Property: ix.meta.Properties[prop],
	}, nil
}

// Metadata returns the sidecar metadata backing this index.
func (ix *Index) Metadata() *Metadata {
	return ix.meta
}

// Categories returns the ordered category names discovered at build time.
func (ix *Index) Categories() []string {
	return ix.meta.Categories
}

// Properties returns the ordered property names discovered at build time.
func (ix *Index) Properties() []string {
	return ix.meta.Properties
}

// Scripts returns the ordered script records discovered at build time.
func (ix *Index) Scripts() []ScriptRecord {
	return ix.meta.Scripts
}

// Script returns the record for name, if the script was discovered at build
// time. Scripts with Count == 0 are discoverable here but excluded from
// UsableScripts.
func (ix *Index) Script(name string) (ScriptRecord, bool) {
	sr, ok := ix.scriptByName[name]
	if !ok {
		return ScriptRecord{}, false
	}
	return *sr, true
}

// UsableScripts returns, in index order, the scripts that indexed at least
// one codepoint.
func (ix *Index) UsableScripts() []string {
	names := make([]string, 0, len(ix.meta.Scripts))
	for _, sr := range ix.meta.Scripts {
		if sr.Count > 0 {
			names = append(names, sr.Name)
		}
	}
	return names
}

// IndexStats summarizes a built or loaded index.
type IndexStats struct {
	IndexedCodepoints int
	Categories        int
	Scripts           int
	UsableScripts     int
	Properties        int
	TriePages         int
	TrieBytes         int
}

// Stats reports size and coverage counters for the index.
func (ix *Index) Stats() IndexStats {
	st := IndexStats{
		Categories: len(ix.meta.Categories),
		Scripts:    len(ix.meta.Scripts),
		Properties: len(ix.meta.Properties),
		TriePages:  ix.trie.pageCount(),
		TrieBytes:  len(ix.trie.index)*2 + len(ix.trie.values)*4,
	}
	for _, sr := range ix.meta.Scripts {
		st.IndexedCodepoints += int(sr.Count)
		if sr.Count > 0 {
			st.UsableScripts++
		}
	}
	return st
}
