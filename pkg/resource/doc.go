// Package resource implements the fixed-capacity resource pool that every
// MoGUL subsystem (audio, sprites, fonts, tile maps, levels, configuration
// documents) is built on. A subsystem supplies a payload type, a destructor
// and a loader; the pool owns allocation, lifetime, deduplication by key and
// reclamation.
//
// Architecture
//
// A Pool[T] allocates its slots once, at construction, as two parallel
// arrays: per-slot headers and payloads. Payload pointers returned by the
// pool stay valid (point at the same storage) for the pool's lifetime; what
// changes is the object living in the slot. Each (re)allocation assigns the
// slot a fresh id from a monotonic counter, so a caller holding a
// (pointer, id) pair can detect that the slot was recycled:
//
//	ptr, _ := sprites.Acquire()
//	id, _ := sprites.IDOf(ptr)
//	// ... much later
//	if !sprites.IsValid(ptr, id) {
//		// the slot now holds a different sprite
//	}
//
// Sharing
//
// A shared pool (the default) deduplicates LoadByKey requests: two loads of
// the same key return the same payload and the loader runs once. Releasing
// the last reference does not destroy the payload. The slot stays warm,
// keeping its key, until either a later LoadByKey revives it or an Acquire
// under pressure evicts it. A unique pool (Config.Unique) never shares;
// every request gets a private payload, destroyed as soon as it is released.
//
// Eviction
//
// Acquire picks, among unreferenced slots, the one released longest ago.
// Slots that have never been used always go first. Ties go to the lowest
// slot index. When every slot is referenced Acquire fails with a
// pool_exhausted error; the pool never grows and never blocks.
//
// Typed handles
//
// Shared[T] and Unique[T] wrap a payload pointer with its Handle (slot
// index and id). Only Shared can be cloned, and a released handle refuses to
// be released again:
//
//	font, err := fonts.LoadShared(ctx, "fonts/mono.ttf")
//	if err != nil {
//		return err
//	}
//	defer font.Release()
//
// Concurrency
//
// A Pool is not safe for concurrent use. Callers that need it from several
// goroutines must serialize every call.
package resource
