package resource

import (
	"context"
	"math"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/errors"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/metrics"
)

// DefaultMaxKeyLength bounds the length of dedup keys when Config leaves it unset.
const DefaultMaxKeyLength = 512

// Destructor releases whatever a payload holds. It must leave the payload
// safe to destroy again only if the caller relies on that; the pool never
// calls it twice for the same content.
type Destructor[T any] func(payload *T)

// Loader fills a zeroed payload from key. A non-nil error rolls the
// allocation back.
type Loader[T any] func(ctx context.Context, key string, payload *T) error

// Config describes a pool. Destroy and Load are optional.
type Config[T any] struct {
	// Name identifies the pool in logs and metrics.
	Name string
	// Capacity is the fixed slot count.
	Capacity int
	// Unique gives every request a private payload that is destroyed on release.
	Unique bool
	// MaxKeyLength bounds keys passed to LoadByKey. Zero means DefaultMaxKeyLength.
	MaxKeyLength int
	Destroy      Destructor[T]
	Load         Loader[T]
}

// Pool is a fixed-capacity, reference-counted cache of T. See the package
// documentation for the lifecycle of a slot.
type Pool[T any] struct {
	name        string
	unique      bool
	maxKeyLen   int
	payloadSize uintptr
	destroy     Destructor[T]
	load        Loader[T]

	headers  []header
	payloads []T
	owner    map[*T]uint32
	ids      map[uint64]uint32
	keys     map[string]uint32
	free     reclaimQueue
	nextID   uint64

	live   int
	cached int

	hits         uint64
	misses       uint64
	evictions    uint64
	loadFailures uint64

	destroyed bool

	clock   Clock
	log     *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// New allocates a pool with cfg.Capacity empty slots. No payload is loaded.
func New[T any](cfg Config[T], opts ...Option) (*Pool[T], error) {
	if cfg.Name == "" {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "pool name is required")
	}
	if cfg.Capacity <= 0 || uint64(cfg.Capacity) > math.MaxUint32 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "capacity %d out of bounds", cfg.Capacity).
			WithDetail("pool", cfg.Name)
	}
	size := reflect.TypeFor[T]().Size()
	if size == 0 {
		// Distinct payloads need distinct addresses.
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "payload type must not be zero-sized").
			WithDetail("pool", cfg.Name)
	}
	maxKeyLen := cfg.MaxKeyLength
	if maxKeyLen <= 0 {
		maxKeyLen = DefaultMaxKeyLength
	}

	o := buildOptions(cfg.Name, opts)

	p := &Pool[T]{
		name:        cfg.Name,
		unique:      cfg.Unique,
		maxKeyLen:   maxKeyLen,
		payloadSize: size,
		destroy:     cfg.Destroy,
		load:        cfg.Load,
		headers:     make([]header, cfg.Capacity),
		payloads:    make([]T, cfg.Capacity),
		owner:       make(map[*T]uint32, cfg.Capacity),
		ids:         make(map[uint64]uint32, cfg.Capacity),
		keys:        make(map[string]uint32),
		nextID:      1,
		clock:       o.clock,
		log:         o.logger,
		metrics:     o.metrics,
		tracer:      o.tracer,
	}
	for i := range p.headers {
		p.headers[i].index = uint32(i)
		p.owner[&p.payloads[i]] = uint32(i)
	}
	p.free = newReclaimQueue(p.headers)
	p.publish()

	p.log.Debug("pool created",
		zap.Int("capacity", cfg.Capacity),
		zap.Uintptr("payload_size", size),
		zap.Bool("unique", cfg.Unique))
	return p, nil
}

// Name returns the pool's display name.
func (p *Pool[T]) Name() string { return p.name }

// Capacity returns the fixed slot count, or 0 once destroyed.
func (p *Pool[T]) Capacity() int { return len(p.headers) }

// PayloadSize returns the size in bytes of one payload.
func (p *Pool[T]) PayloadSize() uintptr { return p.payloadSize }

// Unique reports whether the pool hands out private payloads.
func (p *Pool[T]) Unique() bool { return p.unique }

// Acquire claims a slot, evicting the least recently released payload when
// no never-used slot is left. The payload is zeroed, unkeyed and holds one
// reference.
func (p *Pool[T]) Acquire() (*T, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	idx, err := p.allocate()
	if err != nil {
		return nil, err
	}
	p.publish()
	return &p.payloads[idx], nil
}

// LoadByKey returns the payload for key. In a shared pool an existing live
// or cached payload with that key is reused without calling the loader;
// otherwise a slot is acquired and the loader fills it.
func (p *Pool[T]) LoadByKey(ctx context.Context, key string) (*T, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "key is required").
			WithDetail("pool", p.name)
	}
	if len(key) > p.maxKeyLen {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "key longer than %d bytes", p.maxKeyLen).
			WithDetail("pool", p.name).
			WithDetail("key", key)
	}
	if p.load == nil {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "pool has no loader").
			WithDetail("pool", p.name)
	}

	if !p.unique {
		if idx, ok := p.keys[key]; ok {
			p.revive(idx)
			p.hits++
			p.metrics.CacheHit()
			p.publish()
			p.log.Debug("cache hit", zap.String("key", key), zap.Uint32("ref_count", p.headers[idx].refCount))
			return &p.payloads[idx], nil
		}
	}

	p.misses++
	p.metrics.CacheMiss()

	idx, err := p.allocate()
	if err != nil {
		return nil, err
	}

	if err := p.invokeLoader(ctx, idx, key); err != nil {
		p.rollback(idx)
		p.loadFailures++
		p.metrics.LoadFailure()
		p.publish()
		p.log.Warn("load failed", zap.String("key", key), zap.Error(err))
		return nil, errors.LoadFailed(p.name, key, err)
	}

	p.headers[idx].key = key
	if !p.unique {
		p.keys[key] = idx
	}
	p.publish()
	p.log.Debug("loaded", zap.String("key", key), zap.Uint32("index", idx))
	return &p.payloads[idx], nil
}

// Retain adds a reference to a live payload of a shared pool.
func (p *Pool[T]) Retain(ptr *T) error {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return err
	}
	if p.unique {
		return errors.New(errors.ErrorTypeInvalidArgument, "unique payloads cannot be shared").
			WithDetail("pool", p.name)
	}
	h := &p.headers[idx]
	if h.refCount == 0 {
		return errors.New(errors.ErrorTypeInvalidArgument, "cannot retain a released payload").
			WithDetail("pool", p.name).
			WithDetail("index", idx)
	}
	h.refCount++
	return nil
}

// Release drops one reference to ptr. A unique payload is destroyed at once;
// a shared one stays cached, key intact, once its last reference is gone.
func (p *Pool[T]) Release(ptr *T) error {
	idx, err := p.indexOf(ptr)
	if err != nil {
		return err
	}
	h := &p.headers[idx]
	if h.refCount == 0 {
		return errors.New(errors.ErrorTypeInvalidArgument, "payload already released").
			WithDetail("pool", p.name).
			WithDetail("index", idx)
	}

	if p.unique {
		p.destroySlot(idx)
		h.refCount = 0
	} else {
		h.refCount--
		if h.refCount > 0 {
			return nil
		}
		p.cached++
	}

	h.lastFreedAt = p.now()
	delete(p.ids, h.id)
	p.live--
	p.free.push(idx)
	p.publish()
	return nil
}

// Clean destroys every cached payload (unreferenced but still loaded) and
// returns how many it destroyed. Slot ages are left alone.
func (p *Pool[T]) Clean() int {
	if p.check() != nil {
		return 0
	}
	n := 0
	for i := range p.headers {
		h := &p.headers[i]
		if h.reclaimable() && h.occupied {
			p.destroySlot(uint32(i))
			n++
		}
	}
	p.cached = 0
	p.publish()
	if n > 0 {
		p.log.Debug("cleaned cache", zap.Int("destroyed", n))
	}
	return n
}

// Clear destroys every payload, including ones still referenced, and marks
// all slots reclaimable.
//
// Clear is unsafe: pointers and handles held by callers keep pointing at
// destroyed payloads until their slots are reused. Use it only when no
// outstanding reference exists.
func (p *Pool[T]) Clear() {
	if p.check() != nil {
		return
	}
	now := p.now()
	for i := range p.headers {
		idx := uint32(i)
		h := &p.headers[i]
		if h.occupied {
			p.destroySlot(idx)
		}
		if h.refCount > 0 {
			h.refCount = 0
			h.lastFreedAt = now
			p.free.push(idx)
		}
	}
	clear(p.ids)
	clear(p.keys)
	p.live = 0
	p.cached = 0
	p.publish()
	p.log.Warn("pool cleared")
}

// Destroy runs the destructor on every loaded payload and drops the pool's
// storage. Every later call on the pool fails or returns a zero value.
func (p *Pool[T]) Destroy() {
	if p.check() != nil {
		return
	}
	for i := range p.headers {
		if p.headers[i].occupied {
			p.destroySlot(uint32(i))
		}
	}
	p.headers = nil
	p.payloads = nil
	p.owner = nil
	p.ids = nil
	p.keys = nil
	p.free = reclaimQueue{}
	p.live = 0
	p.cached = 0
	p.destroyed = true
	p.metrics.Forget()
	p.log.Debug("pool destroyed")
}

// Stats is a point-in-time summary of a pool.
type Stats struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	Unique       bool   `json:"unique"`
	Live         int    `json:"live"`
	Cached       int    `json:"cached"`
	Free         int    `json:"free"`
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Evictions    uint64 `json:"evictions"`
	LoadFailures uint64 `json:"load_failures"`
}

// Stats returns the pool's current counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Name:         p.name,
		Capacity:     len(p.headers),
		Unique:       p.unique,
		Live:         p.live,
		Cached:       p.cached,
		Free:         len(p.headers) - p.live - p.cached,
		Hits:         p.hits,
		Misses:       p.misses,
		Evictions:    p.evictions,
		LoadFailures: p.loadFailures,
	}
}

func (p *Pool[T]) check() error {
	if p == nil || p.destroyed {
		return errors.New(errors.ErrorTypeInvalidArgument, "pool is nil or destroyed")
	}
	return nil
}

func (p *Pool[T]) now() uint64 {
	// 0 marks never-used slots.
	if t := p.clock.Now(); t > 0 {
		return t
	}
	return 1
}

// allocate pops the best reclaimable slot and makes it live with a new id.
func (p *Pool[T]) allocate() (uint32, error) {
	idx, ok := p.free.pop()
	if !ok {
		p.metrics.Exhausted()
		p.log.Warn("pool exhausted", zap.Int("capacity", len(p.headers)))
		return 0, errors.New(errors.ErrorTypePoolExhausted, "no reclaimable slot").
			WithDetail("pool", p.name).
			WithDetail("capacity", len(p.headers))
	}

	h := &p.headers[idx]
	if h.occupied {
		p.cached--
		p.evictions++
		p.metrics.Eviction()
		p.log.Debug("evicting", zap.Uint32("index", idx), zap.String("key", h.key), zap.Uint64("last_freed_at", h.lastFreedAt))
		p.destroySlot(idx)
	}

	var zero T
	p.payloads[idx] = zero

	h.id = p.nextID
	p.nextID++
	h.refCount = 1
	h.key = ""
	h.occupied = true
	p.ids[h.id] = idx
	p.live++
	return idx, nil
}

// revive takes another reference on a keyed slot, pulling it out of the
// reclaim queue if it was cached.
func (p *Pool[T]) revive(idx uint32) {
	h := &p.headers[idx]
	if h.refCount == 0 {
		p.free.remove(idx)
		p.ids[h.id] = idx
		p.live++
		p.cached--
	}
	h.refCount++
}

// rollback undoes allocate after a failed load.
func (p *Pool[T]) rollback(idx uint32) {
	h := &p.headers[idx]
	p.destroySlot(idx)
	h.refCount = 0
	h.lastFreedAt = p.now()
	delete(p.ids, h.id)
	p.live--
	p.free.push(idx)
}

// destroySlot runs the destructor and forgets the slot's key.
func (p *Pool[T]) destroySlot(idx uint32) {
	h := &p.headers[idx]
	if p.destroy != nil {
		p.destroy(&p.payloads[idx])
	}
	h.occupied = false
	if h.key != "" {
		if cur, ok := p.keys[h.key]; ok && cur == idx {
			delete(p.keys, h.key)
		}
		h.key = ""
	}
}

func (p *Pool[T]) invokeLoader(ctx context.Context, idx uint32, key string) error {
	ctx, span := p.tracer.Start(ctx, "resource.load", trace.WithAttributes(
		attribute.String("pool", p.name),
		attribute.String("key", key),
		attribute.Int64("index", int64(idx)),
	))
	defer span.End()

	timer := metrics.NewTimer(key)
	err := p.load(ctx, key, &p.payloads[idx])
	p.metrics.ObserveLoad(timer.Stop())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *Pool[T]) publish() {
	p.metrics.SetOccupancy(p.live, p.cached)
}
