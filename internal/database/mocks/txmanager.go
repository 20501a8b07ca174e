// Package mocks provides test doubles for database abstractions.
package mocks

import (
	"context"
	"sync"
	"testing"
)

// MockTxManager is a TxManager test double that runs the callback without a
// real transaction. The callback receives the caller's context unchanged, so
// repositories under test fall back to their plain *sql.DB querier.
type MockTxManager struct {
	t  *testing.T
	mu sync.Mutex

	callCount int

	// Err, when set, is returned without invoking the callback.
	Err error
}

// NewMockTxManager creates a MockTxManager bound to the given test.
func NewMockTxManager(t *testing.T) *MockTxManager {
	t.Helper()
	return &MockTxManager{t: t}
}

// WithTx runs fn with the provided context, simulating a committed transaction.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// CallCount reports how many times WithTx was invoked.
func (m *MockTxManager) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
