package codepoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyDatabase covers three scripts with four codepoints each.
func toyDatabase() *Database {
	db := NewDatabase()
	for code := rune(0x41); code <= 0x44; code++ {
		db.Add(Record{Code: code, Category: "Lu", Script: "Latin"})
	}
	for code := rune(0x391); code <= 0x394; code++ {
		db.Add(Record{Code: code, Category: "Lu", Script: "Greek"})
	}
	for code := rune(0x410); code <= 0x413; code++ {
		db.Add(Record{Code: code, Category: "Ll", Script: "Cyrillic"})
	}
	return db
}

func mustParseTable(t *testing.T, rows string) []PropertyRange {
	t.Helper()
	table, err := ParsePropertyTable(strings.NewReader(rows))
	require.NoError(t, err)
	return table
}

func TestFieldBits(t *testing.T) {
	cases := []struct {
		n    int
		want uint32
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{16, 4},
		{17, 5},
		{256, 8},
		{257, 9},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, fieldBits(tc.n), "fieldBits(%d)", tc.n)
	}
}

func TestBuild(t *testing.T) {
	t.Run("resolves an indexed codepoint from a toy database", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID"))
		require.NoError(t, err)

		info, err := ix.Lookup(0x41)
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, &CodepointInfo{
			Code:     0x41,
			Category: "Lu",
			Script:   "Latin",
			Property: PropertyPVALID,
		}, info)
	})

	t.Run("returns nil for a codepoint outside the property table", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID"))
		require.NoError(t, err)

		info, err := ix.Lookup(0x45)
		require.NoError(t, err)
		assert.Nil(t, info)

		info, err = ix.Lookup(0x391)
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("rejects an empty database", func(t *testing.T) {
		_, err := Build(NewDatabase(), mustParseTable(t, "0041, PVALID"))
		assert.ErrorIs(t, err, ErrNoCodepoints)

		_, err = Build(nil, nil)
		assert.ErrorIs(t, err, ErrNoCodepoints)
	})

	t.Run("drops unassigned property rows", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0042, PVALID\n0043-0044, UNASSIGNED"))
		require.NoError(t, err)

		assert.Equal(t, []string{PropertyPVALID}, ix.Properties())

		info, err := ix.Lookup(0x43)
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("skips codepoints the database does not know", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0040-0045, PVALID"))
		require.NoError(t, err)

		info, err := ix.Lookup(0x40)
		require.NoError(t, err)
		assert.Nil(t, info)

		latin, ok := ix.Script("Latin")
		require.True(t, ok)
		assert.Equal(t, uint32(4), latin.Count)
	})

	t.Run("places the sentinels above the category field", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID\n0391-0394, CONTEXTO"))
		require.NoError(t, err)

		meta := ix.Metadata()
		// 2 properties, 3 scripts, 2 categories -> 1 + 2 + 1 value bits.
		assert.Equal(t, uint32(1), meta.PropertyBits)
		assert.Equal(t, uint32(2), meta.ScriptBits)
		assert.Equal(t, uint32(1), meta.CategoryBits)
		assert.Equal(t, uint32(0), meta.PropertyShift)
		assert.Equal(t, uint32(1), meta.ScriptShift)
		assert.Equal(t, uint32(3), meta.CategoryShift)
		assert.Equal(t, uint32(1)<<4, meta.InvalidValue)
		assert.Equal(t, uint32(1)<<5, meta.ErrorValue)
	})

	t.Run("tracks script ranges, counts, and usable scripts", func(t *testing.T) {
		ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID\n0391-0392, CONTEXTO"))
		require.NoError(t, err)

		latin, ok := ix.Script("Latin")
		require.True(t, ok)
		assert.Equal(t, uint32(0), latin.Index)
		assert.Equal(t, uint32(0x41), latin.FirstCode)
		assert.Equal(t, uint32(0x44), latin.LastCode)
		assert.Equal(t, uint32(4), latin.Count)

		greek, ok := ix.Script("Greek")
		require.True(t, ok)
		assert.Equal(t, uint32(2), greek.Count)

		cyrillic, ok := ix.Script("Cyrillic")
		require.True(t, ok)
		assert.Equal(t, uint32(0), cyrillic.Count)

		assert.Equal(t, []string{"Latin", "Greek"}, ix.UsableScripts())

		st := ix.Stats()
		assert.Equal(t, 6, st.IndexedCodepoints)
		assert.Equal(t, 3, st.Scripts)
		assert.Equal(t, 2, st.UsableScripts)
	})
}

func TestTrieSharesIdenticalPages(t *testing.T) {
	ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID\n0391-0394, PVALID\n0410-0413, PVALID"))
	require.NoError(t, err)

	// Pages 0x00, 0x03, and 0x04 carry values; every other page collapses
	// into the shared all-invalid page.
	assert.Equal(t, 4, ix.Stats().TriePages)
}

func TestParsePropertyTable(t *testing.T) {
	t.Run("parses single codes, ranges, comments, and blanks", func(t *testing.T) {
		table := mustParseTable(t, "# reference rows\n0041, PVALID\n\n0391-0394, CONTEXTO # trailing note\n")
		require.Len(t, table, 2)
		assert.Equal(t, PropertyRange{Lo: 0x41, Hi: 0x41, Property: PropertyPVALID}, table[0])
		assert.Equal(t, PropertyRange{Lo: 0x391, Hi: 0x394, Property: PropertyContextO}, table[1])
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		for _, rows := range []string{
			"0041 PVALID",
			"0041,",
			", PVALID",
			"G041, PVALID",
			"0044-0041, PVALID",
			"110000, PVALID",
		} {
			_, err := ParsePropertyTable(strings.NewReader(rows))
			assert.ErrorIs(t, err, ErrMalformedRange, "rows %q", rows)
		}
	})
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	blobPath := filepath.Join(dir, "codepoints.idx")
	sidecarPath := filepath.Join(dir, "codepoints.meta.json")

	built, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID\n0391-0394, CONTEXTO\n0410-0413, PVALID"))
	require.NoError(t, err)
	require.NoError(t, built.Persist(blobPath, sidecarPath))

	loaded, err := Load(blobPath, sidecarPath)
	require.NoError(t, err)

	assert.Equal(t, built.Metadata(), loaded.Metadata())
	for _, code := range []rune{0x41, 0x44, 0x45, 0x391, 0x410, 0x10FFFF} {
		want, werr := built.Lookup(code)
		got, gerr := loaded.Lookup(code)
		require.NoError(t, werr)
		require.NoError(t, gerr)
		assert.Equal(t, want, got, "lookup %#U", code)
	}
}

func TestLoadRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	blobPath := filepath.Join(dir, "codepoints.idx")
	sidecarPath := filepath.Join(dir, "codepoints.meta.json")

	built, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID"))
	require.NoError(t, err)
	require.NoError(t, built.Persist(blobPath, sidecarPath))

	t.Run("bad blob magic", func(t *testing.T) {
		badBlob := filepath.Join(dir, "bad.idx")
		require.NoError(t, os.WriteFile(badBlob, []byte("XXXXnot a trie blob"), 0o644))
		_, err := Load(badBlob, sidecarPath)
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})

	t.Run("sidecar version mismatch", func(t *testing.T) {
		meta := *built.Metadata()
		meta.Version = 99
		raw, err := json.Marshal(&meta)
		require.NoError(t, err)
		badSidecar := filepath.Join(dir, "bad.meta.json")
		require.NoError(t, os.WriteFile(badSidecar, raw, 0o644))
		_, err = Load(blobPath, badSidecar)
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})

	t.Run("missing sidecar", func(t *testing.T) {
		_, err := Load(blobPath, filepath.Join(dir, "nope.meta.json"))
		assert.Error(t, err)
	})
}

func TestLookupReportsCorruption(t *testing.T) {
	ix, err := Build(toyDatabase(), mustParseTable(t, "0041-0044, PVALID"))
	require.NoError(t, err)

	// Point the first-level entry for the 0x00 page past the value table.
	ix.trie.index[0] = uint16(ix.trie.pageCount())

	_, err = ix.Lookup(0x41)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestFromGoTables(t *testing.T) {
	t.Run("classifies runes of a known script", func(t *testing.T) {
		db := FromGoTables("Greek")
		require.Positive(t, db.Len())

		ix, err := Build(db, AllValidTable(db))
		require.NoError(t, err)

		info, err := ix.Lookup('α')
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "Greek", info.Script)
		assert.Equal(t, CategoryLowercaseLetter, info.Category)
		assert.Equal(t, PropertyPVALID, info.Property)
	})

	t.Run("ignores unknown script names", func(t *testing.T) {
		assert.Zero(t, FromGoTables("NotAScript").Len())
	})

	t.Run("script name listing includes the majors", func(t *testing.T) {
		names := GoScriptNames()
		assert.Contains(t, names, "Latin")
		assert.Contains(t, names, "Cyrillic")
	})
}

func TestAllValidTableCoalescesRuns(t *testing.T) {
	db := NewDatabase()
	for _, code := range []rune{0x41, 0x42, 0x43, 0x50} {
		db.Add(Record{Code: code, Category: "Lu", Script: "Latin"})
	}
	table := AllValidTable(db)
	require.Len(t, table, 2)
	assert.Equal(t, PropertyRange{Lo: 0x41, Hi: 0x43, Property: PropertyPVALID}, table[0])
	assert.Equal(t, PropertyRange{Lo: 0x50, Hi: 0x50, Property: PropertyPVALID}, table[1])
}
