package orderbook

import "github.com/abdoElHodaky/matchbook/internal/book"

// Side is the side of an order or price level.
type Side = book.Side

const (
	Buy  = book.Buy
	Sell = book.Sell
)

// OrderType distinguishes limit and market orders.
type OrderType = book.Type

const (
	Limit  = book.Limit
	Market = book.Market
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus = book.Status

const (
	New             = book.New
	PartiallyFilled = book.PartiallyFilled
	Filled          = book.Filled
	Cancelled       = book.Cancelled
)

// Trade is one execution between a resting maker and an incoming taker.
type Trade = book.Trade

// MatchResult reports the outcome of one Submit call.
type MatchResult = book.MatchResult

// PriceLevel is one aggregated price/quantity level in a depth snapshot.
type PriceLevel = book.Level

// Order is a read-only snapshot of a resting order.
type Order = book.OrderSnapshot

// MarketDepth is a two-sided depth snapshot, best levels first.
type MarketDepth struct {
	Bids []PriceLevel
	Asks []PriceLevel
}
