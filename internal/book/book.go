package book

import "sync/atomic"

// Book is the single-symbol core order book (component F): the façade
// that owns the slab, the price index, the order directory, the
// matcher, and the spinlock serializing every mutation. Nothing in this
// package is safe to call concurrently except through Book's exported
// methods. Every one of them that reads or mutates the book takes the
// spinlock for its entire duration — this is the sole source of mutual
// exclusion in the core; only the atomic counters (NextOrderID,
// TotalTrades, TotalVolume) are read or advanced without it.
type Book struct {
	lock spinlock

	slab  *Slab
	index *priceIndex
	dir   *directory
	match matcher

	nextOrderID atomic.Uint64
	totalTrades atomic.Uint64
	totalVolume atomic.Uint64
}

// New creates an empty book backed by a slab with the given per-block
// size (DefaultSlabSize if 0).
func New(slabBlockSize int) *Book {
	slab := NewSlab(slabBlockSize)
	return &Book{
		slab:  slab,
		index: newPriceIndex(slab),
		dir:   newDirectory(),
	}
}

// NewFixedCapacity creates a book whose slab never grows past capacity
// live+free slots; submissions fail with ErrAllocationExhausted once
// full rather than allocating further memory.
func NewFixedCapacity(slabBlockSize, capacity int) *Book {
	slab := NewFixedSlab(slabBlockSize, capacity)
	return &Book{
		slab:  slab,
		index: newPriceIndex(slab),
		dir:   newDirectory(),
	}
}

// NextOrderID hands out the next monotonic order identifier without
// taking the book lock; IDs are a plain atomic counter independent of
// book mutation order.
func (b *Book) NextOrderID() uint64 {
	return b.nextOrderID.Add(1)
}

// Submit accepts a new order, matches it against the opposite side
// under price-time priority, and rests any remaining limit quantity on
// the book. orderID must be unique and is typically obtained from
// NextOrderID. nowNs is the caller-supplied timestamp (monotonic clock
// reading) recorded on the resting record and on every trade this call
// produces; a later trade against the resting remainder carries the
// timestamp of the order that takes it.
//
// A market order that cannot fully fill is not rested: per spec, market
// orders have no resting price, so unfilled market-order quantity is
// simply dropped (Status is left PartiallyFilled or New with the
// remainder visible in MatchResult.RemainingQty, but the order is never
// inserted into the directory or index).
func (b *Book) Submit(orderID uint64, side Side, typ Type, price int64, quantity uint64, nowNs uint64) (MatchResult, error) {
	if quantity == 0 {
		return MatchResult{}, ErrPreconditionViolation
	}
	if typ == Limit && price <= 0 {
		return MatchResult{}, ErrPreconditionViolation
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, exists := b.dir.lookup(orderID); exists {
		return MatchResult{}, ErrDuplicateID
	}

	h, rec, err := b.slab.Allocate()
	if err != nil {
		return MatchResult{}, err
	}
	rec.OrderID = orderID
	rec.TimestampNs = nowNs
	rec.Price = price
	rec.Quantity = quantity
	rec.Side = side
	rec.Type = typ
	rec.Status = New

	trades := b.match.run(b.index, b.dir, b.slab, h, rec, nowNs)
	b.recordTrades(trades)

	result := MatchResult{
		OrderID:        orderID,
		Trades:         trades,
		FilledQuantity: rec.FilledQuantity,
		RemainingQty:   rec.Remaining(),
		Status:         rec.Status,
	}

	switch {
	case rec.IsFullyFilled():
		b.slab.Deallocate(h)
	case typ == Market:
		// Unfilled market-order remainder is not resting liquidity.
		b.slab.Deallocate(h)
	default:
		b.dir.insert(orderID, h)
		b.index.insertTail(side, h, rec)
	}

	return result, nil
}

// BatchEntry is one order within a SubmitBatch call.
type BatchEntry struct {
	OrderID  uint64
	Side     Side
	Type     Type
	Price    int64
	Quantity uint64
	NowNs    uint64
}

// SubmitBatch runs Submit for each order in sequence, under the same
// book semantics as individual calls, returning one MatchResult per
// input order in input order.
func (b *Book) SubmitBatch(orders []BatchEntry) []MatchResult {
	results := make([]MatchResult, len(orders))
	for i, o := range orders {
		res, err := b.Submit(o.OrderID, o.Side, o.Type, o.Price, o.Quantity, o.NowNs)
		if err != nil {
			res = MatchResult{OrderID: o.OrderID, Status: Cancelled}
		}
		results[i] = res
	}
	return results
}

// Cancel removes a resting order from the book. It reports ErrNotFound
// if the order is unknown (already filled, already cancelled, or never
// existed).
func (b *Book) Cancel(orderID uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	h, ok := b.dir.lookup(orderID)
	if !ok {
		return ErrNotFound
	}
	rec := b.slab.Get(h)
	rec.Status = Cancelled
	b.index.unlink(rec.Side, rec, h)
	b.dir.remove(orderID)
	b.slab.Deallocate(h)
	return nil
}

// SubmitPassive inserts an order directly into the book without
// running it through the matcher. It exists for building a resting
// book from a known-non-crossing snapshot (see §8 scenario 1); callers
// are responsible for ensuring the order does not in fact cross the
// opposite side, since no check is performed.
func (b *Book) SubmitPassive(orderID uint64, side Side, price int64, quantity uint64, nowNs uint64) error {
	if quantity == 0 || price <= 0 {
		return ErrPreconditionViolation
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, exists := b.dir.lookup(orderID); exists {
		return ErrDuplicateID
	}

	h, rec, err := b.slab.Allocate()
	if err != nil {
		return err
	}
	rec.OrderID = orderID
	rec.TimestampNs = nowNs
	rec.Price = price
	rec.Quantity = quantity
	rec.Side = side
	rec.Type = Limit
	rec.Status = New

	b.dir.insert(orderID, h)
	b.index.insertTail(side, h, rec)
	return nil
}

// Modify changes the quantity of a resting order. Per spec, modify is
// cancel-plus-re-add under the same id: it always loses queue priority
// and re-enters at the tail of its (unchanged) price level, and it does
// not run the matcher — a resting order can only be modified, never
// re-crossed. newQuantity is the new total quantity, which must exceed
// the order's already-filled quantity.
func (b *Book) Modify(orderID uint64, newQuantity uint64, nowNs uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	h, ok := b.dir.lookup(orderID)
	if !ok {
		return ErrNotFound
	}
	rec := b.slab.Get(h)
	if newQuantity == 0 || newQuantity <= rec.FilledQuantity {
		return ErrPreconditionViolation
	}

	b.index.unlink(rec.Side, rec, h)
	rec.Quantity = newQuantity
	rec.TimestampNs = nowNs
	rec.Status = New
	if rec.FilledQuantity > 0 {
		rec.Status = PartiallyFilled
	}
	b.index.insertTail(rec.Side, h, rec)
	return nil
}

func (b *Book) recordTrades(trades []Trade) {
	if len(trades) == 0 {
		return
	}
	b.totalTrades.Add(uint64(len(trades)))
	var vol uint64
	for _, t := range trades {
		vol += t.Quantity
	}
	b.totalVolume.Add(vol)
}

// BestBidPrice returns the best bid price and true, or (0, false) if
// the bid side is empty.
func (b *Book) BestBidPrice() (int64, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.index.bids.bestPrice()
}

// BestAskPrice returns the best ask price and true, or (0, false) if
// the ask side is empty.
func (b *Book) BestAskPrice() (int64, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.index.asks.bestPrice()
}

// Spread returns ask - bid and true, or (0, false) if either side is
// empty.
func (b *Book) Spread() (int64, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	bid, okBid := b.index.bids.bestPrice()
	ask, okAsk := b.index.asks.bestPrice()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// Mid returns the midpoint price (bid+ask)/2 in tick units, truncated
// toward zero, and true, or (0, false) if either side is empty.
func (b *Book) Mid() (int64, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	bid, okBid := b.index.bids.bestPrice()
	ask, okAsk := b.index.asks.bestPrice()
	if !okBid || !okAsk {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Depth returns up to maxLevels aggregated price levels per side,
// best-first.
func (b *Book) Depth(maxLevels int) (bids, asks []Level) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.index.aggregateDepth(Buy, maxLevels), b.index.aggregateDepth(Sell, maxLevels)
}

// OrderSnapshot is a read-only view of one resting order, returned by
// Lookup.
type OrderSnapshot struct {
	OrderID        uint64
	Side           Side
	Type           Type
	Price          int64
	Quantity       uint64
	FilledQuantity uint64
	Status         Status
	TimestampNs    uint64
}

// Remaining returns the unfilled quantity of the snapshotted order.
func (o OrderSnapshot) Remaining() uint64 {
	return o.Quantity - o.FilledQuantity
}

// Lookup returns a snapshot of a resting order, or ErrNotFound.
func (b *Book) Lookup(orderID uint64) (OrderSnapshot, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	h, ok := b.dir.lookup(orderID)
	if !ok {
		return OrderSnapshot{}, ErrNotFound
	}
	rec := b.slab.Get(h)
	return OrderSnapshot{
		OrderID:        rec.OrderID,
		Side:           rec.Side,
		Type:           rec.Type,
		Price:          rec.Price,
		Quantity:       rec.Quantity,
		FilledQuantity: rec.FilledQuantity,
		Status:         rec.Status,
		TimestampNs:    rec.TimestampNs,
	}, nil
}

// Size returns the number of resting orders.
func (b *Book) Size() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.dir.size()
}

// TotalTrades returns the lifetime trade count. It is an atomic counter,
// advanced once per Submit after matching, and may be read without the
// lock.
func (b *Book) TotalTrades() uint64 { return b.totalTrades.Load() }

// TotalVolume returns the lifetime traded quantity.
func (b *Book) TotalVolume() uint64 { return b.totalVolume.Load() }

// Clear cancels every resting order, resetting the book to empty while
// preserving order-ID and trade-ID counters.
func (b *Book) Clear() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, side := range []Side{Buy, Sell} {
		si := b.index.side(side)
		for _, price := range append([]int64(nil), si.levels...) {
			bkt := si.buckets[price]
			for h := bkt.head; !h.isNil(); {
				rec := b.slab.Get(h)
				next := rec.next
				b.dir.remove(rec.OrderID)
				b.slab.Deallocate(h)
				h = next
			}
		}
		si.buckets = make(map[int64]*bucket)
		si.levels = nil
	}
}
