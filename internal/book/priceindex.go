package book

import "sort"

// bucket is the FIFO queue of live records resting at one price on one
// side. Head/tail are handles into the slab; count is kept in sync with
// the reachable chain length so it never needs to be recomputed.
type bucket struct {
	head, tail handle
	count      uint32
}

// sideIndex is one side (bids or asks) of the price-level index: a
// price→bucket map plus a sorted list of the prices currently resident,
// kept sorted ascending regardless of side — "best" is read from either
// end depending on descending. Grounded on the teacher's OrderHeap
// (container/heap over *Order), generalized to index buckets instead of
// individual orders so FIFO order within a level is an O(1) intrusive
// splice rather than heap reordering.
type sideIndex struct {
	buckets    map[int64]*bucket
	levels     []int64 // always sorted ascending
	descending bool    // true for bids: best = highest = last of levels
}

func newSideIndex(descending bool) *sideIndex {
	return &sideIndex{
		buckets:    make(map[int64]*bucket),
		descending: descending,
	}
}

func (si *sideIndex) insertLevel(price int64) {
	i := sort.Search(len(si.levels), func(i int) bool { return si.levels[i] >= price })
	si.levels = append(si.levels, 0)
	copy(si.levels[i+1:], si.levels[i:])
	si.levels[i] = price
}

func (si *sideIndex) removeLevel(price int64) {
	i := sort.Search(len(si.levels), func(i int) bool { return si.levels[i] >= price })
	if i >= len(si.levels) || si.levels[i] != price {
		bookInconsistency("removeLevel: price not present")
		return
	}
	si.levels = append(si.levels[:i], si.levels[i+1:]...)
}

// bestPrice returns the best price and true, or (0, false) if the side is
// empty.
func (si *sideIndex) bestPrice() (int64, bool) {
	if len(si.levels) == 0 {
		return 0, false
	}
	if si.descending {
		return si.levels[len(si.levels)-1], true
	}
	return si.levels[0], true
}

// priceIndex is the full two-sided order book index (component C). It
// resolves intrusive links through a Slab so buckets store only handles,
// never pointers.
type priceIndex struct {
	slab *Slab
	bids *sideIndex
	asks *sideIndex
}

func newPriceIndex(slab *Slab) *priceIndex {
	return &priceIndex{
		slab: slab,
		bids: newSideIndex(true),
		asks: newSideIndex(false),
	}
}

func (pi *priceIndex) side(s Side) *sideIndex {
	if s == Buy {
		return pi.bids
	}
	return pi.asks
}

// insertTail appends rec (already allocated in the slab) to the tail of
// its side/price bucket, creating the bucket if absent.
func (pi *priceIndex) insertTail(s Side, h handle, rec *Record) {
	si := pi.side(s)
	b, ok := si.buckets[rec.Price]
	if !ok {
		b = &bucket{head: nilHandle, tail: nilHandle}
		si.buckets[rec.Price] = b
		si.insertLevel(rec.Price)
	}

	rec.prev = b.tail
	rec.next = nilHandle
	if !b.tail.isNil() {
		pi.slab.Get(b.tail).next = h
	} else {
		b.head = h
	}
	b.tail = h
	b.count++
}

// unlink splices rec out of its bucket by local links; if the bucket
// becomes empty it is erased from the map and the sorted level list, so
// no empty bucket is ever stored (§4C invariant).
func (pi *priceIndex) unlink(s Side, rec *Record, h handle) {
	si := pi.side(s)
	b, ok := si.buckets[rec.Price]
	if !ok {
		bookInconsistency("unlink: bucket missing for resident order")
		return
	}

	if rec.prev.isNil() {
		b.head = rec.next
	} else {
		pi.slab.Get(rec.prev).next = rec.next
	}
	if rec.next.isNil() {
		b.tail = rec.prev
	} else {
		pi.slab.Get(rec.next).prev = rec.prev
	}
	rec.prev, rec.next = nilHandle, nilHandle
	b.count--

	if b.count == 0 {
		delete(si.buckets, rec.Price)
		si.removeLevel(rec.Price)
	}
}

// best returns the handle of the head record of the best bucket on side
// s, or the nil handle if the side is empty.
func (pi *priceIndex) best(s Side) handle {
	si := pi.side(s)
	price, ok := si.bestPrice()
	if !ok {
		return nilHandle
	}
	return si.buckets[price].head
}

// ordersAt returns a FIFO-ordered snapshot of handles resting at price on
// side s.
func (pi *priceIndex) ordersAt(s Side, price int64) []handle {
	si := pi.side(s)
	b, ok := si.buckets[price]
	if !ok {
		return nil
	}
	out := make([]handle, 0, b.count)
	for h := b.head; !h.isNil(); {
		out = append(out, h)
		h = pi.slab.Get(h).next
	}
	return out
}

// Level is one aggregated price level: price, summed remaining quantity,
// and the number of live records contributing to it.
type Level struct {
	Price    int64
	Quantity uint64
	Count    int
}

// aggregateDepth walks up to maxLevels buckets from the best bucket
// outward, summing remaining quantity per level.
func (pi *priceIndex) aggregateDepth(s Side, maxLevels int) []Level {
	si := pi.side(s)
	n := len(si.levels)
	if maxLevels > n {
		maxLevels = n
	}
	out := make([]Level, 0, maxLevels)
	for i := 0; i < maxLevels; i++ {
		var price int64
		if si.descending {
			price = si.levels[n-1-i]
		} else {
			price = si.levels[i]
		}
		b := si.buckets[price]
		var qty uint64
		count := 0
		for h := b.head; !h.isNil(); {
			rec := pi.slab.Get(h)
			qty += rec.Remaining()
			count++
			h = rec.next
		}
		out = append(out, Level{Price: price, Quantity: qty, Count: count})
	}
	return out
}

func (pi *priceIndex) levelCount(s Side) int {
	return len(pi.side(s).levels)
}
