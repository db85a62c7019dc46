package codepoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

var trieMagic = [4]byte{'V', 'F', 'C', 'P'}

// Persist writes the trie blob and the metadata sidecar.
// Blob format (versioned, little-endian):
// [magic 'VFCP'] [u32 version] [u32 indexLen] [u32 valueLen]
// followed by indexLen u16 page numbers and valueLen u32 packed values.
// The sidecar is indented JSON of Metadata.
func (ix *Index) Persist(blobPath, sidecarPath string) error {
	f, err := os.Create(blobPath)
	if err != nil {
		return fmt.Errorf("failed to create trie blob: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(trieMagic[:]); err != nil {
		return fmt.Errorf("failed to write trie blob header: %w", err)
	}
	u32 := func(v uint32) { _ = binary.Write(f, binary.LittleEndian, v) }
	u32(ix.meta.Version)
	u32(uint32(len(ix.trie.index)))
	u32(uint32(len(ix.trie.values)))
	if err := binary.Write(f, binary.LittleEndian, ix.trie.index); err != nil {
		return fmt.Errorf("failed to write trie index: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, ix.trie.values); err != nil {
		return fmt.Errorf("failed to write trie values: %w", err)
	}

	raw, err := json.MarshalIndent(ix.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar metadata: %w", err)
	}
	if err := os.WriteFile(sidecarPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar metadata: %w", err)
	}
	return nil
}

// Load reads a blob and sidecar pair written by Persist and wires them into a
// ready Index.
func Load(blobPath, sidecarPath string) (*Index, error) {
	raw, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar metadata: %w", err)
	}
	meta := &Metadata{}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar metadata: %w", err)
	}
	if meta.Version != FormatVersion {
		return nil, fmt.Errorf("%w: sidecar version %d, want %d", ErrCorruptIndex, meta.Version, FormatVersion)
	}

	f, err := os.Open(blobPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trie blob: %w", err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read trie blob header: %w", err)
	}
	if magic != trieMagic {
		return nil, fmt.Errorf("%w: bad blob magic %q", ErrCorruptIndex, magic[:])
	}
	var ver, indexLen, valueLen uint32
	for _, dst := range []*uint32{&ver, &indexLen, &valueLen} {
		if err := binary.Read(f, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("failed to read trie blob header: %w", err)
		}
	}
	if ver != meta.Version {
		return nil, fmt.Errorf("%w: blob version %d, sidecar version %d", ErrCorruptIndex, ver, meta.Version)
	}
	if indexLen != numPages || valueLen%pageSize != 0 {
		return nil, fmt.Errorf("%w: blob geometry %d index entries, %d values", ErrCorruptIndex, indexLen, valueLen)
	}

	t := &Trie{
		index:   make([]uint16, indexLen),
		values:  make([]uint32, valueLen),
		invalid: meta.InvalidValue,
		errval:  meta.ErrorValue,
	}
	if err := binary.Read(f, binary.LittleEndian, t.index); err != nil {
		return nil, fmt.Errorf("failed to read trie index: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, t.values); err != nil {
		return nil, fmt.Errorf("failed to read trie values: %w", err)
	}
	return NewIndex(t, meta), nil
}
