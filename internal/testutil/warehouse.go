package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// QueryFunc answers a single SQL statement
type QueryFunc func(sql string) (*warehouse.Table, error)

// StubWarehouse is an in-memory warehouse.Client for unit tests.
type StubWarehouse struct {
	mu      sync.Mutex
	handler QueryFunc
	calls   []string
	started bool
	stopped bool
}

// NewStubWarehouse returns a stub answering every query through handler
func NewStubWarehouse(handler QueryFunc) *StubWarehouse {
	return &StubWarehouse{handler: handler}
}

// Query records the statement and delegates to the handler
func (s *StubWarehouse) Query(_ context.Context, sql string) (*warehouse.Table, error) {
	s.mu.Lock()
	s.calls = append(s.calls, sql)
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return warehouse.NewTable(nil, nil), nil
	}

	return handler(sql)
}

// Driver identifies the stub
func (s *StubWarehouse) Driver() string {
	return "stub"
}

// Start marks the stub as started
func (s *StubWarehouse) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = true

	return nil
}

// Stop marks the stub as stopped
func (s *StubWarehouse) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	return nil
}

// Calls returns the number of queries executed
func (s *StubWarehouse) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// CallsMatching counts executed queries containing substr
func (s *StubWarehouse) CallsMatching(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0

	for _, sql := range s.calls {
		if strings.Contains(sql, substr) {
			count++
		}
	}

	return count
}

// Stopped reports whether Stop was called
func (s *StubWarehouse) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopped
}

// SingleRow builds a one-row table from alternating column names and values
func SingleRow(pairs ...interface{}) *warehouse.Table {
	columns := make([]warehouse.Column, 0, len(pairs)/2)
	row := make([]interface{}, 0, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		columns = append(columns, warehouse.Column{Name: name})
		row = append(row, pairs[i+1])
	}

	return warehouse.NewTable(columns, [][]interface{}{row})
}
