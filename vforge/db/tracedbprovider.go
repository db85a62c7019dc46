package db

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/value-forge/vforge"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

// TraceRecord is one stored draw log with its identity and bookkeeping.
// Entries serialize to the interchange JSON at the database boundary.
type TraceRecord struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Entries   randsource.Trace
}

// TraceDBProvider persists named generation traces so a run recorded on one
// machine can be replayed on another.
type TraceDBProvider struct {
	db *sql.DB
}

// NewTraceDBProvider opens or initializes the trace database under the
// config directory.
func NewTraceDBProvider() (*TraceDBProvider, error) {
	// Ensure the config directory exists
	if err := os.MkdirAll(internal.DefaultConfigPath, 0o755); err != nil {
		return nil, fmt.Errorf("could not create config directory: %v", err)
	}

	slog.Info("Trace database path:", "path", internal.DefaultTraceDBPath)

	return NewTraceDBProviderAt(internal.DefaultTraceDBPath)
}

// NewTraceDBProviderAt opens or initializes a trace database at an explicit
// path or DSN.
func NewTraceDBProviderAt(dsn string) (*TraceDBProvider, error) {
	db, err := ConnectToDB(dsn)
	if err != nil {
		return nil, err
	}

	provider := &TraceDBProvider{db: db}
	if err := provider.init(); err != nil {
		return nil, err
	}
	return provider, nil
}

// ConnectToDB opens a libsql database. Bare filesystem paths get the file:
// scheme; remote URLs pass through untouched.
func ConnectToDB(dsn string) (*sql.DB, error) {
	if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, "://") {
		dsn = "file:" + dsn
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	return db, nil
}

// init sets up the trace database tables.
func (t *TraceDBProvider) init() error {
	_, err := t.db.Exec(`CREATE TABLE IF NOT EXISTS traces (
		id TEXT PRIMARY KEY UNIQUE,
		name TEXT UNIQUE,
		created_at TEXT NOT NULL,
		entries BLOB
	)`)
	if err != nil {
		return fmt.Errorf("failed to create traces table: %w", err)
	}
	return nil
}

// InsertTrace stores a trace and returns its ID. A zero ID or timestamp is
// filled in.
func (t *TraceDBProvider) InsertTrace(record *TraceRecord) (uuid.UUID, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := randsource.EncodeTrace(&buf, record.Entries); err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode trace %q: %w", record.Name, err)
	}

	tx, err := t.db.Begin()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be a no-op if transaction is committed

	result, err := tx.Exec("INSERT INTO traces (id, name, created_at, entries) VALUES (?, ?, ?, ?)",
		record.ID.String(), record.Name, record.CreatedAt.Format(time.RFC3339), buf.Bytes())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert trace: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return uuid.Nil, fmt.Errorf("expected 1 row affected, got %d", rowsAffected)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("Stored generation trace", "id", record.ID, "name", record.Name, "entries", len(record.Entries))

	return record.ID, nil
}

// GetTrace retrieves a specific trace by ID.
func (t *TraceDBProvider) GetTrace(id uuid.UUID) (*TraceRecord, error) {
	row := t.db.QueryRow("SELECT id, name, created_at, entries FROM traces WHERE id = ?", id.String())
	return scanTrace(row)
}

// GetTraceByName retrieves a trace by its unique name.
func (t *TraceDBProvider) GetTraceByName(name string) (*TraceRecord, error) {
	row := t.db.QueryRow("SELECT id, name, created_at, entries FROM traces WHERE name = ?", name)
	return scanTrace(row)
}

// GetLatestTrace retrieves the most recently stored trace.
func (t *TraceDBProvider) GetLatestTrace() (*TraceRecord, error) {
	row := t.db.QueryRow("SELECT id, name, created_at, entries FROM traces ORDER BY created_at DESC LIMIT 1")
	return scanTrace(row)
}

// ListTraces retrieves every stored trace, newest first.
func (t *TraceDBProvider) ListTraces() ([]TraceRecord, error) {
	rows, err := t.db.Query("SELECT id, name, created_at, entries FROM traces ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query traces: %w", err)
	}
	defer rows.Close()

	var records []TraceRecord
	for rows.Next() {
		record, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during trace iteration: %w", err)
	}

	return records, nil
}

// DeleteTrace removes a stored trace.
func (t *TraceDBProvider) DeleteTrace(id uuid.UUID) error {
	_, err := t.db.Exec("DELETE FROM traces WHERE id = ?", id.String())
	return err
}

// TraceExists reports whether a trace with the given ID is stored.
func (t *TraceDBProvider) TraceExists(id uuid.UUID) (bool, error) {
	var exists bool
	err := t.db.QueryRow("SELECT EXISTS(SELECT 1 FROM traces WHERE id = ?)", id.String()).Scan(&exists)
	return exists, err
}

// Close closes the trace database connection.
func (t *TraceDBProvider) Close() error {
	return t.db.Close()
}

// Connect implements ITraceDBProvider.Connect
func (t *TraceDBProvider) Connect(dsn string) (*sql.DB, error) {
	var err error
	t.db, err = ConnectToDB(dsn)
	return t.db, err
}

// InitSchema implements ITraceDBProvider.InitSchema
func (t *TraceDBProvider) InitSchema() error {
	return t.init()
}

// Backup creates a backup of the trace database.
// It returns the path to the backup file and any error that occurred during the process.
func (t *TraceDBProvider) Backup() (string, error) {
	if t.db == nil {
		return "", fmt.Errorf("cannot backup: database connection is nil")
	}

	backupDir := filepath.Join(internal.DefaultConfigPath, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create backup directory: %v", err)
	}

	// Generate unique backup filename with timestamp
	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("traces_backup_%s.db", timestamp))

	// Execute the backup using SQL VACUUM INTO command
	// This is specific to SQLite and creates a copy of the database
	_, err := t.db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath))
	if err != nil {
		return "", fmt.Errorf("backup failed: %v", err)
	}

	slog.Info("Trace database backup created successfully", "path", backupPath)
	return backupPath, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrace(row rowScanner) (*TraceRecord, error) {
	var record TraceRecord
	var idStr string
	var createdAt string
	var payload []byte

	err := row.Scan(&idStr, &record.Name, &createdAt, &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}

	record.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace ID: %w", err)
	}

	record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace timestamp: %w", err)
	}

	record.Entries, err = randsource.DecodeTrace(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode trace %q: %w", record.Name, err)
	}

	return &record, nil
}

// Ensure TraceDBProvider implements ITraceDBProvider interface
var _ ITraceDBProvider = (*TraceDBProvider)(nil)
