package store

import (
	"context"
	"sync"

	"tableflip.dev/tmpl/pkg/template"
)

type memory struct {
	mu      sync.Mutex
	counter template.ID
	items   []template.Template
}

// NewMemory returns a process-local Persistence.
func NewMemory() Persistence {
	return &memory{}
}

func (m *memory) List(_ context.Context) ([]template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]template.Template{}, m.items...), nil
}

func (m *memory) Get(_ context.Context, id template.ID) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := template.IndexOf(m.items, id); i >= 0 {
		return m.items[i], nil
	}
	return template.Template{}, ErrNotFound
}

func (m *memory) Create(_ context.Context, t template.Template) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	t.ID = m.counter
	m.items = append(m.items, t)
	return t, nil
}

func (m *memory) Update(_ context.Context, t template.Template) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := template.IndexOf(m.items, t.ID)
	if i < 0 {
		return template.Template{}, ErrNotFound
	}
	m.items[i] = t
	return t, nil
}

func (m *memory) Delete(_ context.Context, id template.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := template.IndexOf(m.items, id)
	if i < 0 {
		return ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memory) Close() error { return nil }
