package resource

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
)

// indexOf maps a payload pointer back to its slot. A pointer this pool did
// not hand out is a caller bug: it is reported through DPanic, which panics
// under a development logger.
func (p *Pool[T]) indexOf(ptr *T) (uint32, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	idx, ok := p.owner[ptr]
	if !ok {
		p.log.DPanic("pointer not owned by pool", zap.String("pointer", fmt.Sprintf("%p", ptr)))
		return 0, errors.Newf(errors.ErrorTypeOutOfRange, "pointer %p not owned by pool %q", ptr, p.name).
			WithDetail("pool", p.name)
	}
	return idx, nil
}

// IndexOf returns the slot index of ptr.
func (p *Pool[T]) IndexOf(ptr *T) (uint32, error) {
	return p.indexOf(ptr)
}

// IDOf returns the id of the object currently in ptr's slot.
func (p *Pool[T]) IDOf(ptr *T) (uint64, error) {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return 0, err
	}
	return p.headers[idx].id, nil
}

// RefCountOf returns the reference count of ptr's slot.
func (p *Pool[T]) RefCountOf(ptr *T) (uint32, error) {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return 0, err
	}
	return p.headers[idx].refCount, nil
}

// KeyOf returns the key ptr was loaded under, or "" for acquired payloads.
func (p *Pool[T]) KeyOf(ptr *T) (string, error) {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return "", err
	}
	return p.headers[idx].key, nil
}

// IsValid reports whether ptr's slot still carries id, that is whether the
// object the caller captured has not been replaced. Foreign pointers and
// id 0 are never valid.
func (p *Pool[T]) IsValid(ptr *T, id uint64) bool {
	if id == 0 || p.check() != nil {
		return false
	}
	idx, ok := p.owner[ptr]
	if !ok {
		return false
	}
	return p.headers[idx].id == id
}

// ByID returns the live payload carrying id.
func (p *Pool[T]) ByID(id uint64) (*T, bool) {
	if p.check() != nil {
		return nil, false
	}
	idx, ok := p.ids[id]
	if !ok {
		return nil, false
	}
	return &p.payloads[idx], true
}
