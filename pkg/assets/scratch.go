package assets

import (
	"context"

	"go.uber.org/zap"
)

// Scratch is private working state: a byte buffer and a variable table.
// Loaded by key, the table starts as a deep copy of that template document.
type Scratch struct {
	Template string
	Buf      []byte
	Vars     map[string]any
}

// Get returns the variable name.
func (s *Scratch) Get(name string) (any, bool) {
	v, ok := s.Vars[name]
	return v, ok
}

// Set stores a variable.
func (s *Scratch) Set(name string, v any) {
	if s.Vars == nil {
		s.Vars = make(map[string]any)
	}
	s.Vars[name] = v
}

// Reset empties the buffer and variables, keeping the buffer's storage.
func (s *Scratch) Reset() {
	s.Buf = s.Buf[:0]
	clear(s.Vars)
}

func (m *Manager) loadScratch(ctx context.Context, key string, s *Scratch) error {
	doc, err := m.documents.LoadByKey(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.documents.Release(doc); err != nil {
			m.log.Warn("failed to release template", zap.String("key", key), zap.Error(err))
		}
	}()
	s.Template = key
	s.Vars = cloneMap(doc.Data)
	return nil
}

func destroyScratch(s *Scratch) {
	s.Buf = nil
	s.Vars = nil
}
