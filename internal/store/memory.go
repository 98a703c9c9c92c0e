package store

import (
	"context"
	"sync"

	"github.com/linkcut/linkcut/internal/shortlink"
)

// MemoryStore is an in-memory implementation of shortlink.Repository. It
// backs tests and single-process deployments without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[shortlink.Code]*shortlink.Record
	byURL   map[string]shortlink.Code
	order   []shortlink.Code // insertion order, oldest first
}

// NewMemoryStore creates a new in-memory short link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[shortlink.Code]*shortlink.Record),
		byURL:   make(map[string]shortlink.Code),
	}
}

func (m *MemoryStore) Insert(_ context.Context, record *shortlink.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.Code]; exists {
		return shortlink.ErrSlugTaken
	}

	stored := cloneRecord(record)
	m.records[record.Code] = stored
	m.order = append(m.order, record.Code)

	// First writer wins the URL index; dedupe returns that record.
	if _, indexed := m.byURL[record.OriginalURL]; !indexed {
		m.byURL[record.OriginalURL] = record.Code
	}

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortlink.Code) (*shortlink.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[code]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	return cloneRecord(record), nil
}

func (m *MemoryStore) GetByOriginalURL(_ context.Context, originalURL string) (*shortlink.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.byURL[originalURL]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	return cloneRecord(m.records[code]), nil
}

func (m *MemoryStore) ResolveURL(_ context.Context, code shortlink.Code) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[code]
	if !ok {
		return "", shortlink.ErrNotFound
	}

	return record.OriginalURL, nil
}

func (m *MemoryStore) RecordVisit(_ context.Context, code shortlink.Code, visitorIP string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[code]
	if !ok {
		return shortlink.ErrNotFound
	}

	for i := range record.Ledger {
		if record.Ledger[i].VisitorIP == visitorIP {
			record.Ledger[i].Count++

			return nil
		}
	}

	record.Ledger = append(record.Ledger, shortlink.LedgerEntry{VisitorIP: visitorIP, Count: 1})

	return nil
}

func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]*shortlink.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := len(m.order)
	if limit < count {
		count = limit
	}

	records := make([]*shortlink.Record, 0, count)
	for i := len(m.order) - 1; i >= 0 && len(records) < count; i-- {
		records = append(records, cloneRecord(m.records[m.order[i]]))
	}

	return records, nil
}

// cloneRecord copies a record including its ledger so callers never share
// the mutable slice with the store.
func cloneRecord(record *shortlink.Record) *shortlink.Record {
	clone := *record
	clone.Ledger = make([]shortlink.LedgerEntry, len(record.Ledger))
	copy(clone.Ledger, record.Ledger)

	return &clone
}

// Compile-time check.
var _ shortlink.Repository = (*MemoryStore)(nil)
