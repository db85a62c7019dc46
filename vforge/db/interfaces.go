package db

import (
	"database/sql"

	"github.com/google/uuid"
)

// ITraceDBProvider is the interface for trace database operations (using I prefix to avoid naming conflict)
type ITraceDBProvider interface {
	Connect(dsn string) (*sql.DB, error)
	Close() error
	InitSchema() error
	// Trace methods
	InsertTrace(record *TraceRecord) (uuid.UUID, error)
	GetTrace(id uuid.UUID) (*TraceRecord, error)
	GetTraceByName(name string) (*TraceRecord, error)
	GetLatestTrace() (*TraceRecord, error)
	ListTraces() ([]TraceRecord, error)
	DeleteTrace(id uuid.UUID) error
	TraceExists(id uuid.UUID) (bool, error)
	// Backup method
	Backup() (string, error)
}
