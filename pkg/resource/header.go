package resource

import "container/heap"

// header is the per-slot bookkeeping kept beside each payload.
type header struct {
	refCount uint32
	key      string
	// index never changes for the life of the pool.
	index uint32
	// id is 0 until the slot is first allocated.
	id uint64
	// lastFreedAt is 0 for a slot that has never been allocated.
	lastFreedAt uint64
	// occupied is set while the payload holds content the destructor has
	// not seen yet.
	occupied bool
	// heapIndex is the slot's position in the reclaim queue, -1 while live.
	heapIndex int
}

func (h *header) reclaimable() bool {
	return h.refCount == 0
}

// reclaimQueue is an indexed min-heap of unreferenced slots ordered by
// (lastFreedAt, index). It shares its headers slice with the pool.
type reclaimQueue struct {
	headers []header
	items   []uint32
}

func newReclaimQueue(headers []header) reclaimQueue {
	q := reclaimQueue{
		headers: headers,
		items:   make([]uint32, len(headers)),
	}
	// Every slot starts never-used, so index order is already a valid heap.
	for i := range headers {
		q.items[i] = uint32(i)
		headers[i].heapIndex = i
	}
	return q
}

func (q *reclaimQueue) Len() int { return len(q.items) }

func (q *reclaimQueue) Less(i, j int) bool {
	a := &q.headers[q.items[i]]
	b := &q.headers[q.items[j]]
	if a.lastFreedAt != b.lastFreedAt {
		return a.lastFreedAt < b.lastFreedAt
	}
	return a.index < b.index
}

func (q *reclaimQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.headers[q.items[i]].heapIndex = i
	q.headers[q.items[j]].heapIndex = j
}

func (q *reclaimQueue) Push(x any) {
	idx := x.(uint32)
	q.headers[idx].heapIndex = len(q.items)
	q.items = append(q.items, idx)
}

func (q *reclaimQueue) Pop() any {
	n := len(q.items) - 1
	idx := q.items[n]
	q.items = q.items[:n]
	q.headers[idx].heapIndex = -1
	return idx
}

func (q *reclaimQueue) push(idx uint32) {
	heap.Push(q, idx)
}

func (q *reclaimQueue) pop() (uint32, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return heap.Pop(q).(uint32), true
}

func (q *reclaimQueue) remove(idx uint32) {
	if pos := q.headers[idx].heapIndex; pos >= 0 {
		heap.Remove(q, pos)
	}
}
