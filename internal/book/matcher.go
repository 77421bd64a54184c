package book

// Trade is one execution: the resting (maker) order traded against the
// incoming (taker) order at the maker's price, per price-time priority.
type Trade struct {
	TradeID      uint64
	TimestampNs  uint64
	Price        int64
	Quantity     uint64
	MakerOrderID uint64
	TakerOrderID uint64
	MakerSide    Side
}

// MatchResult is everything the matching loop produced for one incoming
// order: the trades it generated and the final resting state of the
// order itself (zero quantity remaining if fully filled, non-zero if it
// now rests on the book or was killed for no remaining liquidity).
type MatchResult struct {
	OrderID        uint64
	Trades         []Trade
	FilledQuantity uint64
	RemainingQty   uint64
	Status         Status
}

// matcher holds the mutable matching state that must survive across
// calls: the trade-id counter. It has no lock of its own — the book
// façade serializes all access via its spinlock (component G).
type matcher struct {
	nextTradeID uint64
}

// run executes price-time matching for an incoming order (already
// recorded at h/rec but not yet resting in the price index) against the
// opposite side of pi, consuming liquidity while rec.CanMatchWith the
// resting best order (a market order skips that price test and takes
// whatever rests). It never inserts rec into the index itself — the
// caller (Book.Submit) inserts any remaining quantity for a limit order
// once matching stops.
func (m *matcher) run(pi *priceIndex, dir *directory, slab *Slab, h handle, rec *Record, nowNs uint64) []Trade {
	opp := rec.Side.Opposite()
	var trades []Trade

	for rec.Remaining() > 0 {
		bestH := pi.best(opp)
		if bestH.isNil() {
			break
		}
		best := pi.slab.Get(bestH)
		if rec.Type == Limit && !rec.CanMatchWith(best) {
			break
		}

		fillQty := rec.Remaining()
		if best.Remaining() < fillQty {
			fillQty = best.Remaining()
		}

		m.nextTradeID++
		trades = append(trades, Trade{
			TradeID:      m.nextTradeID,
			TimestampNs:  nowNs,
			Price:        best.Price,
			Quantity:     fillQty,
			MakerOrderID: best.OrderID,
			TakerOrderID: rec.OrderID,
			MakerSide:    best.Side,
		})

		rec.FilledQuantity += fillQty
		best.FilledQuantity += fillQty

		if best.IsFullyFilled() {
			best.Status = Filled
			pi.unlink(opp, best, bestH)
			dir.remove(best.OrderID)
			slab.Deallocate(bestH)
		} else {
			best.Status = PartiallyFilled
		}
	}

	if rec.IsFullyFilled() {
		rec.Status = Filled
	} else if rec.FilledQuantity > 0 {
		rec.Status = PartiallyFilled
	}

	return trades
}
