package resource

import "iter"

// Next returns the first live payload after prev in slot order, or nil at
// the end. Next(nil) starts from the first slot. Acquiring or releasing
// between calls gives unspecified results.
func (p *Pool[T]) Next(prev *T) *T {
	if p.check() != nil {
		return nil
	}
	start := 0
	if prev != nil {
		idx, ok := p.owner[prev]
		if !ok {
			return nil
		}
		start = int(idx) + 1
	}
	for i := start; i < len(p.headers); i++ {
		if p.headers[i].refCount > 0 {
			return &p.payloads[i]
		}
	}
	return nil
}

// All yields every live payload in slot order.
func (p *Pool[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for v := p.Next(nil); v != nil; v = p.Next(v) {
			if !yield(v) {
				return
			}
		}
	}
}

// Handles yields the handle and payload of every live slot in slot order.
func (p *Pool[T]) Handles() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for v := p.Next(nil); v != nil; v = p.Next(v) {
			idx := p.owner[v]
			if !yield(Handle{Index: idx, ID: p.headers[idx].id}, v) {
				return
			}
		}
	}
}
