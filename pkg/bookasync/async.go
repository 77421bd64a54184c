// Package bookasync wraps a synchronous orderbook.Book with a bulk
// dispatch pool and an event stream, for callers that submit in
// batches from many goroutines and want fills delivered as a feed
// rather than read back out of each call's MatchResult.
//
// Grounded on the teacher's ants-based WorkerPoolFactory
// (internal/architecture/fx/workerpool) for pool lifecycle, and on
// ejyy-femto_go's RingBuffer for the event feed.
package bookasync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/abdoElHodaky/matchbook/pkg/orderbook"
)

// EventKind distinguishes the event shapes pushed onto an AsyncBook's
// ring: a trade fill, a rest-on-book acknowledgement, or a rejection.
type EventKind uint8

const (
	EventTrade EventKind = iota
	EventRested
	EventRejected
)

// Event is one unit on an AsyncBook's event feed. RunID correlates
// every event produced by one SubmitBatch call; it is a random UUID,
// not an order or trade identifier, which per the core's own
// invariants stay monotonic atomic counters.
type Event struct {
	Kind     EventKind
	RunID    string
	OrderID  uint64
	Trade    orderbook.Trade
	Err      error
	EmittedAt time.Time
}

// AsyncBook wraps a *orderbook.Book so submissions dispatch through a
// bounded goroutine pool instead of a raw per-call goroutine, while
// individual book mutations still serialize through the core's own
// spinlock; the pool only parallelizes the caller-side work of
// preparing and dispatching each submission, never the book mutation
// itself.
//
// publishMu multiplexes every pool task's event emission behind a
// single logical producer: RingBuffer's contract requires exactly one
// producer goroutine, but many pool workers may finish concurrently, so
// publish serializes their TryPush calls rather than letting them race
// on the ring's write cursor.
type AsyncBook struct {
	book      *orderbook.Book
	pool      *ants.Pool
	events    *RingBuffer[Event]
	publishMu sync.Mutex
}

// NewAsyncBook wraps book with a pool of the given size (goroutines) for
// concurrent dispatch. poolSize <= 0 uses ants' own default.
func NewAsyncBook(book *orderbook.Book, poolSize int) (*AsyncBook, error) {
	var pool *ants.Pool
	var err error
	if poolSize > 0 {
		pool, err = ants.NewPool(poolSize, ants.WithNonblocking(false))
	} else {
		pool, err = ants.NewPool(-1)
	}
	if err != nil {
		return nil, err
	}
	return &AsyncBook{
		book:   book,
		pool:   pool,
		events: NewRingBuffer[Event](),
	}, nil
}

// Release shuts down the dispatch pool. Call once the AsyncBook is no
// longer in use.
func (a *AsyncBook) Release() {
	a.pool.Release()
}

// Events returns the event ring buffer backing this AsyncBook's feed.
// A single consumer goroutine should drain it with TryRead.
func (a *AsyncBook) Events() *RingBuffer[Event] {
	return a.events
}

// SubmitBatch runs every order in orders against the book, in input
// order, as a single task dispatched through the pool — per §6's "must
// not reorder operations" contract, the book mutations this batch
// performs happen in exactly the sequence given, even though the task
// itself runs on a pooled goroutine rather than the caller's. It
// returns once the whole batch has been applied (or ctx is cancelled);
// a cancelled ctx stops the wait but a batch already dispatched runs to
// completion against the book.
func (a *AsyncBook) SubmitBatch(ctx context.Context, orders []orderbook.BatchOrder) error {
	runID := uuid.NewString()
	done := make(chan struct{})

	submitErr := a.pool.Submit(func() {
		defer close(done)
		for _, o := range orders {
			result, err := a.book.Submit(o.OrderID, o.Side, o.Type, o.Price, o.Quantity, o.NowNs)
			a.publishResult(runID, o.OrderID, o.Type, result, err)
		}
	})
	if submitErr != nil {
		return submitErr
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit dispatches a single order through the pool and blocks until
// the book mutation completes, the suspend-point contract §6 describes
// for the async wrapper: the call resumes only once the underlying
// synchronous operation has run to completion.
func (a *AsyncBook) Submit(ctx context.Context, o orderbook.BatchOrder) (orderbook.MatchResult, error) {
	type outcome struct {
		result orderbook.MatchResult
		err    error
	}
	out := make(chan outcome, 1)
	runID := uuid.NewString()

	submitErr := a.pool.Submit(func() {
		result, err := a.book.Submit(o.OrderID, o.Side, o.Type, o.Price, o.Quantity, o.NowNs)
		a.publishResult(runID, o.OrderID, o.Type, result, err)
		out <- outcome{result, err}
	})
	if submitErr != nil {
		return orderbook.MatchResult{}, submitErr
	}

	select {
	case res := <-out:
		return res.result, res.err
	case <-ctx.Done():
		return orderbook.MatchResult{}, ctx.Err()
	}
}

// Cancel dispatches a cancel through the pool and blocks until it
// completes against the book.
func (a *AsyncBook) Cancel(ctx context.Context, orderID uint64) error {
	out := make(chan error, 1)
	submitErr := a.pool.Submit(func() {
		out <- a.book.Cancel(orderID)
	})
	if submitErr != nil {
		return submitErr
	}

	select {
	case err := <-out:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Modify dispatches a modify through the pool and blocks until it
// completes against the book.
func (a *AsyncBook) Modify(ctx context.Context, orderID uint64, newQuantity uint64, nowNs uint64) error {
	out := make(chan error, 1)
	submitErr := a.pool.Submit(func() {
		out <- a.book.Modify(orderID, newQuantity, nowNs)
	})
	if submitErr != nil {
		return submitErr
	}

	select {
	case err := <-out:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AsyncBook) publish(ev Event) {
	a.publishMu.Lock()
	a.events.TryPush(ev)
	a.publishMu.Unlock()
}

func (a *AsyncBook) publishResult(runID string, orderID uint64, typ orderbook.OrderType, result orderbook.MatchResult, err error) {
	now := time.Now()
	if err != nil {
		a.publish(Event{Kind: EventRejected, RunID: runID, OrderID: orderID, Err: err, EmittedAt: now})
		return
	}
	for _, t := range result.Trades {
		a.publish(Event{Kind: EventTrade, RunID: runID, OrderID: orderID, Trade: t, EmittedAt: now})
	}
	// Only a limit order's remainder rests; a market order's is dropped.
	if typ == orderbook.Limit && result.RemainingQty > 0 && result.Status != orderbook.Cancelled {
		a.publish(Event{Kind: EventRested, RunID: runID, OrderID: orderID, EmittedAt: now})
	}
}
