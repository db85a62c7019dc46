package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() randsource.Trace {
	return randsource.Trace{
		{Bytes: []byte{0x00, 0x00, 0x00, 0x02}, Reason: "kind"},
		{Bytes: []byte{0x00, 0x00, 0x00, 0x03}, Reason: "integer length"},
		{Bytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}, Reason: "integer magnitude"},
		{Bytes: []byte{0x01}, Reason: "integer sign"},
	}
}

// TestTraceDBProviderIntegration tests the actual TraceDBProvider implementation
func TestTraceDBProviderIntegration(t *testing.T) {
	tempDir := t.TempDir()
	testDBPath := filepath.Join(tempDir, "test_traces.db")

	provider, err := NewTraceDBProviderAt(testDBPath)
	require.NoError(t, err)
	defer provider.Close()

	t.Run("InsertTrace fills in identity", func(t *testing.T) {
		record := &TraceRecord{Name: "first-run", Entries: sampleTrace()}
		id, err := provider.InsertTrace(record)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, record.ID, id)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("GetTrace round-trips the entries", func(t *testing.T) {
		record := &TraceRecord{Name: "round-trip", Entries: sampleTrace()}
		id, err := provider.InsertTrace(record)
		require.NoError(t, err)

		retrieved, err := provider.GetTrace(id)
		require.NoError(t, err)
		assert.Equal(t, record.ID, retrieved.ID)
		assert.Equal(t, record.Name, retrieved.Name)
		assert.Equal(t, record.Entries, retrieved.Entries)
		assert.WithinDuration(t, record.CreatedAt, retrieved.CreatedAt, time.Second)
	})

	t.Run("GetTraceByName finds the stored trace", func(t *testing.T) {
		record := &TraceRecord{Name: "named-run", Entries: sampleTrace()}
		_, err := provider.InsertTrace(record)
		require.NoError(t, err)

		retrieved, err := provider.GetTraceByName("named-run")
		require.NoError(t, err)
		assert.Equal(t, record.ID, retrieved.ID)

		_, err = provider.GetTraceByName("no-such-run")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		_, err := provider.InsertTrace(&TraceRecord{Name: "dup", Entries: sampleTrace()})
		require.NoError(t, err)
		_, err = provider.InsertTrace(&TraceRecord{Name: "dup", Entries: sampleTrace()})
		assert.Error(t, err)
	})

	t.Run("GetLatestTrace prefers the newest timestamp", func(t *testing.T) {
		older := &TraceRecord{Name: "older", CreatedAt: time.Now().Add(-time.Hour), Entries: sampleTrace()}
		newer := &TraceRecord{Name: "newer", CreatedAt: time.Now().Add(time.Hour), Entries: sampleTrace()}
		_, err := provider.InsertTrace(older)
		require.NoError(t, err)
		_, err = provider.InsertTrace(newer)
		require.NoError(t, err)

		latest, err := provider.GetLatestTrace()
		require.NoError(t, err)
		assert.Equal(t, newer.ID, latest.ID)
	})

	t.Run("ListTraces returns every stored trace", func(t *testing.T) {
		records, err := provider.ListTraces()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(records), 4)
	})

	t.Run("TraceExists and DeleteTrace", func(t *testing.T) {
		record := &TraceRecord{Name: "delete-me", Entries: sampleTrace()}
		id, err := provider.InsertTrace(record)
		require.NoError(t, err)

		exists, err := provider.TraceExists(id)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, provider.DeleteTrace(id))

		exists, err = provider.TraceExists(id)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("an empty trace survives the round trip", func(t *testing.T) {
		record := &TraceRecord{Name: "empty", Entries: randsource.Trace{}}
		id, err := provider.InsertTrace(record)
		require.NoError(t, err)

		retrieved, err := provider.GetTrace(id)
		require.NoError(t, err)
		assert.Empty(t, retrieved.Entries)
	})

	t.Run("a stored trace drives a replaying source", func(t *testing.T) {
		record := &TraceRecord{Name: "replayable", Entries: sampleTrace()}
		id, err := provider.InsertTrace(record)
		require.NoError(t, err)

		retrieved, err := provider.GetTrace(id)
		require.NoError(t, err)

		src := randsource.NewReplaying(retrieved.Entries)
		got, err := src.Draw(4, "kind")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, got)
	})
}

func TestTraceDBProviderBackup(t *testing.T) {
	tempDir := t.TempDir()
	provider, err := NewTraceDBProviderAt(filepath.Join(tempDir, "backup_src.db"))
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.InsertTrace(&TraceRecord{Name: "kept", Entries: sampleTrace()})
	require.NoError(t, err)

	backupPath, err := provider.Backup()
	require.NoError(t, err)
	assert.NotEmpty(t, backupPath)

	_, err = os.Stat(backupPath)
	assert.NoError(t, err)
	t.Cleanup(func() { os.Remove(backupPath) })
}
