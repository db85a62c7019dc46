package randsource

import (
	"encoding/json"
	"fmt"
	"io"
)

// Entry is one recorded draw: the bytes handed out and the reason they were
// requested. Bytes marshal as base64, so a trace survives JSON round trips
// byte-for-byte.
type Entry struct {
	Bytes  []byte `json:"bytes"`
	Reason string `json:"reason"`
}

// Trace is the ordered draw log of one generation run. Order is
// load-bearing: replaying consumes entries front to back.
type Trace []Entry

// EncodeTrace writes the trace as indented JSON.
func EncodeTrace(w io.Writer, trace Trace) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trace); err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	return nil
}

// DecodeTrace reads a trace written by EncodeTrace.
func DecodeTrace(r io.Reader) (Trace, error) {
	var trace Trace
	if err := json.NewDecoder(r).Decode(&trace); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	return trace, nil
}
