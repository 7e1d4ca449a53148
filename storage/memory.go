package storage

import (
	"fmt"
	"maps"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/repositories"
	"slices"
	"sync"
)

// MemoryLog keeps the record log in process memory. Nothing survives a restart.
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[string][]contract.Entry
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[string][]contract.Entry)}
}

func (m *MemoryLog) Append(namespace string, fields domain.Fields) (contract.Entry, error) {
	if err := repositories.ValidateNamespace(namespace); err != nil {
		return contract.Entry{}, err
	}
	if len(fields) == 0 {
		return contract.Entry{}, errors.ErrEmptyRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := uint64(len(m.entries[namespace]))
	entry := contract.Entry{
		Key:    fmt.Sprintf("rec:%s:%019d", namespace, seq),
		Seq:    seq,
		Fields: maps.Clone(fields),
	}
	m.entries[namespace] = append(m.entries[namespace], entry)
	return entry, nil
}

func (m *MemoryLog) Scan(namespace string, fn func(contract.Entry) error) error {
	if err := repositories.ValidateNamespace(namespace); err != nil {
		return err
	}
	m.mu.RLock()
	entries := slices.Clone(m.entries[namespace])
	m.mu.RUnlock()
	for _, entry := range entries {
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryLog) Namespaces() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.entries)), nil
}
