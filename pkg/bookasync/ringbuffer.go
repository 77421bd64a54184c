package bookasync

import "sync/atomic"

// ringSize is the fixed capacity of an event ring; must be a power of
// two so indexing reduces to a mask instead of a modulo.
const (
	ringSize = 1 << 12
	ringMask = ringSize - 1
	cacheLine = 64
)

// RingBuffer is a lock-free single-producer/single-consumer circular
// buffer. Grounded on the femto_go RingBuffer[T]: unsigned
// write-minus-read arithmetic gives both the empty and full tests for
// free, and padding keeps the producer's and consumer's cursors off
// each other's cache line.
//
// Only one goroutine may call TryPush at a time; only one (possibly
// different) may call TryRead. Using either method from more than one
// goroutine concurrently is a caller bug — AsyncBook satisfies this by
// funneling every pool worker's emission through a single mutex-guarded
// publish path rather than calling TryPush directly from pool tasks.
type RingBuffer[T any] struct {
	buf []T

	_pad1    [cacheLine - 8]byte
	writePos atomic.Uint64
	_pad2    [cacheLine - 8]byte
	readPos  atomic.Uint64
	_pad3    [cacheLine - 8]byte
}

// NewRingBuffer allocates a ring of fixed capacity ringSize.
func NewRingBuffer[T any]() *RingBuffer[T] {
	return &RingBuffer[T]{buf: make([]T, ringSize)}
}

// TryPush appends v, reporting false if the ring is full rather than
// blocking — the core's submit path must never stall on a slow
// consumer.
func (r *RingBuffer[T]) TryPush(v T) bool {
	write := r.writePos.Load()
	read := r.readPos.Load()
	if write-read >= ringSize {
		return false
	}
	r.buf[write&ringMask] = v
	r.writePos.Store(write + 1)
	return true
}

// TryRead copies up to len(out) pending elements into out and returns
// the count actually copied (0 if the ring is empty).
func (r *RingBuffer[T]) TryRead(out []T) int {
	write := r.writePos.Load()
	read := r.readPos.Load()
	available := write - read
	if available == 0 {
		return 0
	}
	count := uint64(len(out))
	if available < count {
		count = available
	}
	for i := uint64(0); i < count; i++ {
		out[i] = r.buf[(read+i)&ringMask]
	}
	r.readPos.Store(read + count)
	return int(count)
}

// Len returns the number of unread elements currently in the ring.
func (r *RingBuffer[T]) Len() int {
	return int(r.writePos.Load() - r.readPos.Load())
}
