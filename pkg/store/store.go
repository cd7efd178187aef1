// Package store persists canonical employee records. The pipeline only
// depends on the Upserter interface; the in-memory implementation backs
// tests and dry runs, the Postgres implementation backs real migrations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/hrmigrate/rekon/pkg/records"
)

// BatchResult reports the outcome of one Upsert call.
type BatchResult struct {
	Upserted int
	Failed   []records.Key
}

// Upserter writes canonical records keyed by (org code, employee no).
// Upsert must be idempotent: writing the same records twice leaves the
// store in the same state as writing them once.
type Upserter interface {
	Upsert(ctx context.Context, emps []records.Employee) (BatchResult, error)
}

// Memory is an in-process Upserter.
type Memory struct {
	mu    sync.RWMutex
	byKey map[records.Key]records.Employee
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byKey: make(map[records.Key]records.Employee)}
}

// Upsert inserts or replaces each record.
func (m *Memory) Upsert(ctx context.Context, emps []records.Employee) (BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range emps {
		m.byKey[emp.Key] = emp
	}
	return BatchResult{Upserted: len(emps)}, nil
}

// Get returns a stored record.
func (m *Memory) Get(key records.Key) (records.Employee, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.byKey[key]
	return emp, ok
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}

// All returns every stored record sorted by key.
func (m *Memory) All() []records.Employee {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]records.Employee, 0, len(m.byKey))
	for _, emp := range m.byKey {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}
