package db

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTraceDBProvider is an in-memory mock for ITraceDBProvider
type MockTraceDBProvider struct {
	mu     sync.Mutex
	traces map[uuid.UUID]*TraceRecord
}

func NewMockTraceDBProvider() *MockTraceDBProvider {
	return &MockTraceDBProvider{
		traces: make(map[uuid.UUID]*TraceRecord),
	}
}

func (m *MockTraceDBProvider) Connect(dsn string) (*sql.DB, error) {
	return nil, nil // Not a real DB connection
}

func (m *MockTraceDBProvider) Close() error {
	return nil
}

func (m *MockTraceDBProvider) InitSchema() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = make(map[uuid.UUID]*TraceRecord) // Clear data on init
	return nil
}

func (m *MockTraceDBProvider) InsertTrace(record *TraceRecord) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if _, exists := m.traces[record.ID]; exists {
		return uuid.Nil, fmt.Errorf("trace with ID %s already exists", record.ID)
	}
	for _, existing := range m.traces {
		if existing.Name == record.Name {
			return uuid.Nil, fmt.Errorf("trace named %q already exists", record.Name)
		}
	}
	m.traces[record.ID] = record
	return record.ID, nil
}

func (m *MockTraceDBProvider) GetTrace(id uuid.UUID) (*TraceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, exists := m.traces[id]
	if !exists {
		return nil, sql.ErrNoRows // Simulate database behavior for not found
	}
	return record, nil
}

func (m *MockTraceDBProvider) GetTraceByName(name string) (*TraceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.traces {
		if record.Name == name {
			return record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockTraceDBProvider) GetLatestTrace() (*TraceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *TraceRecord
	for _, record := range m.traces {
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return latest, nil
}

func (m *MockTraceDBProvider) ListTraces() ([]TraceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]TraceRecord, 0, len(m.traces))
	for _, record := range m.traces {
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (m *MockTraceDBProvider) DeleteTrace(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.traces[id]; !exists {
		return fmt.Errorf("trace with ID %s not found", id)
	}
	delete(m.traces, id)
	return nil
}

func (m *MockTraceDBProvider) TraceExists(id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.traces[id]
	return exists, nil
}

func (m *MockTraceDBProvider) Backup() (string, error) {
	return "", nil // Nothing to back up in memory
}

// Ensure MockTraceDBProvider implements ITraceDBProvider interface
var _ ITraceDBProvider = (*MockTraceDBProvider)(nil)
