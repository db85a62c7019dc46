package codepoint

// FormatVersion versions the persisted blob and sidecar as a pair. Any change
// to the packed field layout or the serialized trie geometry bumps it.
const FormatVersion uint32 = 1

// ScriptRecord describes one script discovered at build time. FirstCode and
// LastCode bound every database codepoint carrying the script; the range is a
// superset, not a contiguous run. Count is the number of the script's
// codepoints the property table actually indexed and is legitimately zero
// when the classification and property sources disagree about a script.
type ScriptRecord struct {
	Name      string `json:"name"`
	Index     uint32 `json:"index"`
	FirstCode uint32 `json:"first_code"`
	LastCode  uint32 `json:"last_code"`
	Count     uint32 `json:"count"`
}

// Metadata is the sidecar record persisted next to the trie blob. The blob
// and sidecar form one versioned unit; pairing files from different builds is
// not detected and will not fail cleanly.
type Metadata struct {
	Version    uint32         `json:"version"`
	Categories []string       `json:"categories"`
	Scripts    []ScriptRecord `json:"scripts"`
	Properties []string       `json:"properties"`

	PropertyBits  uint32 `json:"property_bits"`
	ScriptBits    uint32 `json:"script_bits"`
	CategoryBits  uint32 `json:"category_bits"`
	PropertyShift uint32 `json:"property_shift"`
	ScriptShift   uint32 `json:"script_shift"`
	CategoryShift uint32 `json:"category_shift"`

	InvalidValue uint32 `json:"invalid_value"`
	ErrorValue   uint32 `json:"error_value"`
}

// mask returns the extraction mask for a field width.
func mask(width uint32) uint32 {
	return 1<<width - 1
}
