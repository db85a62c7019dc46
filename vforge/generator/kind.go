package generator

// Kind names one producible value shape. The registry maps kinds to rules.
type Kind string

const (
	KindNull     Kind = "null"
	KindBoolean  Kind = "boolean"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindGaussian Kind = "gaussian"
	KindBytes    Kind = "bytes"
	KindText     Kind = "text"
	KindList     Kind = "list"
	KindMap      Kind = "map"
	KindSet      Kind = "set"
	KindHostname Kind = "hostname"
)

// Draw reasons. Every byte pulled from the source carries one of these tags,
// so a replayed trace fails loudly when generation diverges instead of
// silently producing a different value.
const (
	ReasonKind = "kind"

	ReasonListSize = "list size"
	ReasonMapSize  = "map size"
	ReasonSetSize  = "set size"

	ReasonTextScript = "text script"
	ReasonTextLength = "text length"
	ReasonTextRune   = "text rune"

	ReasonIntegerLength    = "integer length"
	ReasonIntegerMagnitude = "integer magnitude"
	ReasonIntegerSign      = "integer sign"

	ReasonBytesLength = "bytes length"
	ReasonBytesData   = "bytes data"

	ReasonBoolean  = "boolean"
	ReasonFloat    = "float"
	ReasonGaussian = "gaussian"

	ReasonHostScheme      = "hostname scheme"
	ReasonHostTLD         = "hostname tld"
	ReasonHostLabelLength = "hostname label length"
	ReasonHostLabelFirst  = "hostname label first"
	ReasonHostLabelRune   = "hostname label rune"

	ReasonScript    = "script"
	ReasonCodepoint = "codepoint"
)
