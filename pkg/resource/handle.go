package resource

import (
	"context"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// Handle names an object by slot index and id. It is a plain value: store
// it anywhere and check it with Resolve.
type Handle struct {
	Index uint32 `json:"index"`
	ID    uint64 `json:"id"`
}

// IsZero reports whether h was never assigned.
func (h Handle) IsZero() bool {
	return h.ID == 0
}

// HandleOf returns the handle of the object currently in ptr's slot.
func (p *Pool[T]) HandleOf(ptr *T) (Handle, error) {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Index: idx, ID: p.headers[idx].id}, nil
}

// Resolve returns the payload h names while its slot still carries h.ID.
func (p *Pool[T]) Resolve(h Handle) (*T, bool) {
	if h.IsZero() || p.check() != nil || int(h.Index) >= len(p.headers) {
		return nil, false
	}
	if p.headers[h.Index].id != h.ID {
		return nil, false
	}
	return &p.payloads[h.Index], true
}

// Shared is a counted reference to a payload of a shared pool.
type Shared[T any] struct {
	pool   *Pool[T]
	ptr    *T
	handle Handle
}

// Unique is the sole reference to a payload of a unique pool.
type Unique[T any] struct {
	pool   *Pool[T]
	ptr    *T
	handle Handle
}

func (p *Pool[T]) requireMode(unique bool) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.unique != unique {
		want := "shared"
		if unique {
			want = "unique"
		}
		return errors.Newf(errors.ErrorTypeInvalidArgument, "pool %q is not a %s pool", p.name, want).
			WithDetail("pool", p.name)
	}
	return nil
}

// AcquireShared is Acquire returning a Shared handle.
func (p *Pool[T]) AcquireShared() (*Shared[T], error) {
	if err := p.requireMode(false); err != nil {
		return nil, err
	}
	ptr, err := p.Acquire()
	if err != nil {
		return nil, err
	}
	return p.shared(ptr), nil
}

// LoadShared is LoadByKey returning a Shared handle.
func (p *Pool[T]) LoadShared(ctx context.Context, key string) (*Shared[T], error) {
	if err := p.requireMode(false); err != nil {
		return nil, err
	}
	ptr, err := p.LoadByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return p.shared(ptr), nil
}

// AcquireUnique is Acquire returning a Unique handle.
func (p *Pool[T]) AcquireUnique() (*Unique[T], error) {
	if err := p.requireMode(true); err != nil {
		return nil, err
	}
	ptr, err := p.Acquire()
	if err != nil {
		return nil, err
	}
	idx := p.owner[ptr]
	return &Unique[T]{pool: p, ptr: ptr, handle: Handle{Index: idx, ID: p.headers[idx].id}}, nil
}

// LoadUnique is LoadByKey returning a Unique handle.
func (p *Pool[T]) LoadUnique(ctx context.Context, key string) (*Unique[T], error) {
	if err := p.requireMode(true); err != nil {
		return nil, err
	}
	ptr, err := p.LoadByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	idx := p.owner[ptr]
	return &Unique[T]{pool: p, ptr: ptr, handle: Handle{Index: idx, ID: p.headers[idx].id}}, nil
}

func (p *Pool[T]) shared(ptr *T) *Shared[T] {
	idx := p.owner[ptr]
	return &Shared[T]{pool: p, ptr: ptr, handle: Handle{Index: idx, ID: p.headers[idx].id}}
}

func errReleased() error {
	return errors.New(errors.ErrorTypeInvalidArgument, "handle already released")
}

// Value returns the payload, or nil once the handle is released.
func (s *Shared[T]) Value() *T { return s.ptr }

// Handle returns the slot index and id captured at acquisition.
func (s *Shared[T]) Handle() Handle { return s.handle }

// Valid reports whether the handle is unreleased and its slot still holds
// the same object.
func (s *Shared[T]) Valid() bool {
	return s.ptr != nil && s.pool.IsValid(s.ptr, s.handle.ID)
}

// Clone takes another reference to the same payload.
func (s *Shared[T]) Clone() (*Shared[T], error) {
	if s.ptr == nil {
		return nil, errReleased()
	}
	if !s.pool.IsValid(s.ptr, s.handle.ID) {
		return nil, errors.New(errors.ErrorTypeStaleHandle, "slot was reused").
			WithDetail("pool", s.pool.name).
			WithDetail("index", s.handle.Index)
	}
	if err := s.pool.Retain(s.ptr); err != nil {
		return nil, err
	}
	return &Shared[T]{pool: s.pool, ptr: s.ptr, handle: s.handle}, nil
}

// Release drops this reference and clears the handle.
func (s *Shared[T]) Release() error {
	if s.ptr == nil {
		return errReleased()
	}
	pool, ptr, id := s.pool, s.ptr, s.handle.ID
	s.pool, s.ptr = nil, nil
	if !pool.IsValid(ptr, id) {
		return errors.New(errors.ErrorTypeStaleHandle, "slot was reused").
			WithDetail("pool", pool.name)
	}
	return pool.Release(ptr)
}

// Value returns the payload, or nil once the handle is released.
func (u *Unique[T]) Value() *T { return u.ptr }

// Handle returns the slot index and id captured at acquisition.
func (u *Unique[T]) Handle() Handle { return u.handle }

// Valid reports whether the handle is unreleased and its slot still holds
// the same object.
func (u *Unique[T]) Valid() bool {
	return u.ptr != nil && u.pool.IsValid(u.ptr, u.handle.ID)
}

// Release destroys the payload and clears the handle.
func (u *Unique[T]) Release() error {
	if u.ptr == nil {
		return errReleased()
	}
	pool, ptr, id := u.pool, u.ptr, u.handle.ID
	u.pool, u.ptr = nil, nil
	if !pool.IsValid(ptr, id) {
		return errors.New(errors.ErrorTypeStaleHandle, "slot was reused").
			WithDetail("pool", pool.name)
	}
	return pool.Release(ptr)
}
