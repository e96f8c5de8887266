package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/sift/internal/table"
)

// MockWriter is a mock implementation of TableWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, t *table.Table) (Result, error)
	LastTable      *table.Table
	WriteCallCount int
	mu             sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the TableWriter interface.
func (m *MockWriter) Write(ctx context.Context, t *table.Table) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastTable = t

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, t)
	}
	return Result{SpreadsheetID: "mock-spreadsheet", Rows: t.NumRows()}, nil
}

// Calls returns how many times Write was called.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.WriteCallCount
}
