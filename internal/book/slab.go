package book

import (
	"sync"
	"sync/atomic"
)

// DefaultSlabSize is the number of record slots per slab block, per spec §4B.
const DefaultSlabSize = 4096

// Slab is a growable arena of fixed-size Record slots with a lock-free LIFO
// free list for O(1) reuse. Grounded on the teacher's object-pool idiom
// (internal/common/pool/trading/fast_order_pool.go, internal/hft/memory/manager.go)
// generalized from sync.Pool (which gives no stable slot index) to an
// index-addressed arena, per the design notes' "arena-plus-index replaces
// pointer graphs" guidance — each Record's prev/next links are handles into
// this arena rather than raw pointers.
//
// Concurrency: allocate/deallocate are lock-free via CAS on freeHead, with
// acquire-on-load/CAS-failure-reload and release-on-CAS-success semantics
// (enforced here by Go's sequentially-consistent atomic package, which is a
// valid strengthening of acquire/release). Growth of the block vector takes
// growMu; in this codebase growth only ever happens while the caller already
// holds the book lock (§4B), so growMu is uncontended in practice and exists
// only so the allocator is correct if ever driven standalone.
type Slab struct {
	growMu     sync.Mutex
	blocks     [][]Record
	blockSize  uint32
	nextUnused atomic.Uint32
	freeHead   atomic.Uint32

	// capacity is the maximum slot count for the fixed-capacity variant.
	// Zero means unbounded growth.
	capacity uint32
}

// NewSlab creates a growable slab with the given per-block size. A
// blockSize of 0 uses DefaultSlabSize.
func NewSlab(blockSize int) *Slab {
	if blockSize <= 0 {
		blockSize = DefaultSlabSize
	}
	s := &Slab{blockSize: uint32(blockSize)}
	s.freeHead.Store(nilSlot)
	return s
}

// NewFixedSlab creates a slab that never grows past capacity slots;
// Allocate reports ErrAllocationExhausted once it is full.
func NewFixedSlab(blockSize, capacity int) *Slab {
	s := NewSlab(blockSize)
	s.capacity = uint32(capacity)
	return s
}

// Capacity returns the fixed capacity, or 0 for the growing variant.
func (s *Slab) Capacity() int { return int(s.capacity) }

// AllocatedCount returns the number of slots ever claimed from the arena
// (including ones currently on the free list).
func (s *Slab) AllocatedCount() int { return int(s.nextUnused.Load()) }

func (s *Slab) blockAndOffset(slot uint32) (int, int) {
	return int(slot / s.blockSize), int(slot % s.blockSize)
}

func (s *Slab) slot(h handle) *Record {
	block, offset := s.blockAndOffset(h.slot)
	return &s.blocks[block][offset]
}

// Allocate returns a handle to zeroed, uninitialized slot storage. It first
// tries to pop the lock-free free list; on an empty free list it claims the
// next never-used slot index, growing the block vector if necessary.
func (s *Slab) Allocate() (handle, *Record, error) {
	for {
		head := s.freeHead.Load()
		if head == nilSlot {
			break
		}
		free := s.slot(handle{slot: head})
		next := free.prev.slot // free-list link reuses the dead record's prev field
		if s.freeHead.CompareAndSwap(head, next) {
			*free = Record{}
			return handle{slot: head}, free, nil
		}
	}

	slot := s.nextUnused.Add(1) - 1
	if s.capacity != 0 && slot >= s.capacity {
		s.nextUnused.Add(^uint32(0)) // roll back the claim
		return nilHandle, nil, ErrAllocationExhausted
	}
	s.ensureBlock(slot)
	rec := s.slot(handle{slot: slot})
	*rec = Record{}
	return handle{slot: slot}, rec, nil
}

// ensureBlock grows the block vector so that slot is addressable.
func (s *Slab) ensureBlock(slot uint32) {
	block, _ := s.blockAndOffset(slot)
	s.growMu.Lock()
	defer s.growMu.Unlock()
	for len(s.blocks) <= block {
		s.blocks = append(s.blocks, make([]Record, s.blockSize))
	}
}

// Deallocate pushes h's slot onto the free list for O(1) reuse.
func (s *Slab) Deallocate(h handle) {
	rec := s.slot(h)
	for {
		head := s.freeHead.Load()
		rec.prev.slot = head
		if s.freeHead.CompareAndSwap(head, h.slot) {
			return
		}
	}
}

// Get resolves a handle to its record, or nil for the nil handle.
func (s *Slab) Get(h handle) *Record {
	if h.isNil() {
		return nil
	}
	return s.slot(h)
}
