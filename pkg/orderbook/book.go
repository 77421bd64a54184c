package orderbook

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdoElHodaky/matchbook/bookerrors"
	"github.com/abdoElHodaky/matchbook/internal/book"
	"github.com/abdoElHodaky/matchbook/internal/bookmetrics"
)

// Book is the public, instrumented wrapper around the spinlock-guarded
// core (internal/book.Book): it adds structured logging, optional Prometheus
// metrics, and an optional submission rate limit. None of these run
// inside the core's spinlock-held section.
type Book struct {
	cfg     Config
	core    *book.Book
	log     *zap.Logger
	metrics *bookmetrics.Metrics
	limiter *rate.Limiter
}

// New creates a Book for cfg. logger may be nil, in which case a no-op
// logger is used — matching the teacher's convention of never requiring
// a caller to wire logging just to exercise core behavior.
func New(cfg Config, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}

	var core *book.Book
	if cfg.FixedCapacity > 0 {
		core = book.NewFixedCapacity(cfg.SlabBlockSize, cfg.FixedCapacity)
	} else {
		core = book.New(cfg.SlabBlockSize)
	}

	b := &Book{
		cfg:  cfg,
		core: core,
		log:  logger.With(zap.String("symbol", cfg.Symbol)),
	}

	if cfg.EnableMetrics {
		b.metrics = bookmetrics.New(cfg.Symbol)
	}
	if cfg.MaxOrdersPerSec > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.MaxOrdersPerSec), int(cfg.MaxOrdersPerSec))
	}

	b.log.Info("order book created",
		zap.Int64("tick_size", cfg.TickSize),
		zap.Bool("metrics_enabled", cfg.EnableMetrics),
	)
	return b
}

// Symbol returns the instrument this book trades.
func (b *Book) Symbol() string { return b.cfg.Symbol }

// NextOrderID hands out the next monotonic order ID for this book.
func (b *Book) NextOrderID() uint64 { return b.core.NextOrderID() }

func (b *Book) classify(err error) error {
	switch err {
	case book.ErrPreconditionViolation:
		return bookerrors.New(bookerrors.ErrPreconditionViolation, "precondition violation").WithSymbol(b.cfg.Symbol)
	case book.ErrNotFound:
		return bookerrors.New(bookerrors.ErrNotFound, "order not found").WithSymbol(b.cfg.Symbol)
	case book.ErrDuplicateID:
		return bookerrors.New(bookerrors.ErrDuplicateID, "duplicate order id").WithSymbol(b.cfg.Symbol)
	case book.ErrAllocationExhausted:
		return bookerrors.New(bookerrors.ErrAllocationExhausted, "book at capacity").WithSymbol(b.cfg.Symbol)
	default:
		return err
	}
}

// Submit submits a new order. nowNs should come from a monotonic clock
// reading (e.g. time.Now().UnixNano()); it is recorded verbatim on the
// resulting record and trades.
func (b *Book) Submit(orderID uint64, side Side, typ OrderType, price int64, quantity uint64, nowNs uint64) (MatchResult, error) {
	if b.limiter != nil && !b.awaitRateLimit() {
		if b.metrics != nil {
			b.metrics.RecordReject("rate_limited")
		}
		return MatchResult{}, bookerrors.New(bookerrors.ErrRateLimited, "submission rate exceeded").WithSymbol(b.cfg.Symbol)
	}

	start := time.Now()
	result, err := b.core.Submit(orderID, side, typ, price, quantity, nowNs)
	elapsed := time.Since(start)

	if err != nil {
		if b.metrics != nil {
			b.metrics.RecordReject(string(bookerrors.Code(b.classify(err))))
		}
		b.log.Debug("submit rejected", zap.Uint64("order_id", orderID), zap.Error(err))
		return MatchResult{}, b.classify(err)
	}

	if b.metrics != nil {
		b.metrics.RecordSubmit(float64(elapsed.Nanoseconds()), len(result.Trades), sumVolume(result.Trades), b.core.Size())
	}
	if len(result.Trades) > 0 {
		b.log.Debug("order matched", zap.Uint64("order_id", orderID), zap.Int("trades", len(result.Trades)))
	}
	return result, nil
}

// BatchOrder is one element of a SubmitBatch call. Its fields mirror
// the Submit parameter list.
type BatchOrder struct {
	OrderID  uint64
	Side     Side
	Type     OrderType
	Price    int64
	Quantity uint64
	NowNs    uint64
}

// SubmitBatch runs Submit for each order in sequence, returning results
// in input order. It bypasses the rate limiter (batch submission is an
// explicit bulk operation, not organic order flow) but still records
// per-call metrics; it writes no per-order log lines.
func (b *Book) SubmitBatch(orders []BatchOrder) []MatchResult {
	results := make([]MatchResult, len(orders))
	for i, o := range orders {
		start := time.Now()
		result, err := b.core.Submit(o.OrderID, o.Side, o.Type, o.Price, o.Quantity, o.NowNs)
		if err != nil {
			if b.metrics != nil {
				b.metrics.RecordReject(string(bookerrors.Code(b.classify(err))))
			}
			results[i] = MatchResult{OrderID: o.OrderID, Status: Cancelled}
			continue
		}
		if b.metrics != nil {
			b.metrics.RecordSubmit(float64(time.Since(start).Nanoseconds()), len(result.Trades), sumVolume(result.Trades), b.core.Size())
		}
		results[i] = result
	}
	return results
}

// Cancel cancels a resting order.
func (b *Book) Cancel(orderID uint64) error {
	if err := b.core.Cancel(orderID); err != nil {
		return b.classify(err)
	}
	b.log.Debug("order cancelled", zap.Uint64("order_id", orderID))
	return nil
}

// SubmitPassive inserts an order directly into the book without
// running it through the matcher.
func (b *Book) SubmitPassive(orderID uint64, side Side, price int64, quantity uint64, nowNs uint64) error {
	if err := b.core.SubmitPassive(orderID, side, price, quantity, nowNs); err != nil {
		return b.classify(err)
	}
	return nil
}

// Modify changes the quantity of a resting order. It is cancel-plus-
// re-add under the same id: the order loses queue priority and does
// not re-match against the opposite side.
func (b *Book) Modify(orderID uint64, newQuantity uint64, nowNs uint64) error {
	if err := b.core.Modify(orderID, newQuantity, nowNs); err != nil {
		return b.classify(err)
	}
	b.log.Debug("order modified", zap.Uint64("order_id", orderID), zap.Uint64("new_quantity", newQuantity))
	return nil
}

// BestBid returns the best bid price, or false if the bid side is empty.
func (b *Book) BestBid() (int64, bool) { return b.core.BestBidPrice() }

// BestAsk returns the best ask price, or false if the ask side is empty.
func (b *Book) BestAsk() (int64, bool) { return b.core.BestAskPrice() }

// Spread returns the best ask minus the best bid.
func (b *Book) Spread() (int64, bool) { return b.core.Spread() }

// Mid returns the book midpoint price.
func (b *Book) Mid() (int64, bool) { return b.core.Mid() }

// Depth returns a two-sided market depth snapshot of up to maxLevels
// price levels per side.
func (b *Book) Depth(maxLevels int) MarketDepth {
	bids, asks := b.core.Depth(maxLevels)
	return MarketDepth{Bids: bids, Asks: asks}
}

// Lookup returns a snapshot of a resting order.
func (b *Book) Lookup(orderID uint64) (Order, error) {
	snap, err := b.core.Lookup(orderID)
	if err != nil {
		return Order{}, b.classify(err)
	}
	return snap, nil
}

// Size returns the number of resting orders.
func (b *Book) Size() int { return b.core.Size() }

// TotalTrades returns the lifetime trade count.
func (b *Book) TotalTrades() uint64 { return b.core.TotalTrades() }

// TotalVolume returns the lifetime traded quantity.
func (b *Book) TotalVolume() uint64 { return b.core.TotalVolume() }

// Clear cancels every resting order.
func (b *Book) Clear() {
	b.core.Clear()
	b.log.Info("book cleared")
}

// awaitRateLimit reports whether Submit may proceed under the token
// bucket. With no SubmitTimeout configured it is a plain non-blocking
// check; with one configured it blocks up to that duration for a token
// to become available before giving up.
func (b *Book) awaitRateLimit() bool {
	if b.cfg.SubmitTimeout <= 0 {
		return b.limiter.Allow()
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.SubmitTimeout)
	defer cancel()
	return b.limiter.Wait(ctx) == nil
}

func sumVolume(trades []Trade) uint64 {
	var v uint64
	for _, t := range trades {
		v += t.Quantity
	}
	return v
}
