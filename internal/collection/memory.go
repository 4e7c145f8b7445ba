package collection

import (
	"context"
	"sync"
)

// Memory keeps records in process. Data is lost on restart.
type Memory struct {
	mu    sync.RWMutex
	colls map[string][]Record
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{colls: map[string][]Record{}}
}

func (m *Memory) List(_ context.Context, coll string, filter map[string]string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, rec := range m.colls[coll] {
		if !Matches(rec, filter) {
			continue
		}
		c, err := clone(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, coll, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.index(coll, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return clone(m.colls[coll][i])
}

func (m *Memory) Create(_ context.Context, coll string, rec Record) (Record, error) {
	rec, err := forCreate(rec)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(coll, rec.ID()) >= 0 {
		return nil, ErrDuplicateID
	}
	m.colls[coll] = append(m.colls[coll], rec)
	return clone(rec)
}

func (m *Memory) Replace(_ context.Context, coll, id string, rec Record) (Record, error) {
	rec, err := forReplace(id, rec)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(coll, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	m.colls[coll][i] = rec
	return clone(rec)
}

func (m *Memory) Delete(_ context.Context, coll, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(coll, id)
	if i < 0 {
		return ErrNotFound
	}
	list := m.colls[coll]
	m.colls[coll] = append(list[:i:i], list[i+1:]...)
	return nil
}

// index must be called with mu held.
func (m *Memory) index(coll, id string) int {
	for i, rec := range m.colls[coll] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}
