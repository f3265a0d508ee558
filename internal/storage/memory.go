package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps files in a map. It is meant for tests and local experiments.
type Memory struct {
	mu      sync.Mutex
	files   map[string][]byte
	deletes []string
	// FailDelete, when set, is consulted before every deletion.
	FailDelete func(key string) error
	// FailSave, when set, is consulted before every save.
	FailSave func(key string) error
}

func NewMemory() *Memory {
	return &Memory{files: map[string][]byte{}}
}

func (m *Memory) Save(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		if err := m.FailSave(key); err != nil {
			return err
		}
	}
	m.files[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	if m.FailDelete != nil {
		if err := m.FailDelete(key); err != nil {
			return err
		}
	}
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("no such file %q", key)
	}
	delete(m.files, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return "/media/" + key
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[key]
	return ok
}

// Len is the number of stored files.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// DeleteAttempts lists every key Delete was called with, in call order.
func (m *Memory) DeleteAttempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}
