package orderbook

import "time"

// Config configures one Book. Mirrors the teacher's pattern of a single
// struct with a DefaultConfig constructor (see LockManagerConfig in the
// coordination package) rather than functional options, since every
// field here is set once at book creation and never mutated.
type Config struct {
	// Symbol identifies the instrument this book trades.
	Symbol string

	// TickSize is the minimum price increment, in the same fixed-point
	// units as every Price field. Submissions are not currently
	// validated against it (left for a future richer validation layer);
	// it is carried so callers and metrics can report human-readable
	// prices consistently.
	TickSize int64

	// SlabBlockSize is the number of order-record slots allocated per
	// slab growth block. Zero uses the core default.
	SlabBlockSize int

	// FixedCapacity bounds the book to at most this many simultaneously
	// live+free order slots. Zero means the slab grows without bound.
	FixedCapacity int

	// MaxOrdersPerSec, if non-zero, rate-limits Submit via a token
	// bucket so a misbehaving feed cannot overwhelm the book.
	MaxOrdersPerSec float64

	// EnableMetrics registers Prometheus instrumentation for this book.
	EnableMetrics bool

	// SubmitTimeout bounds how long Submit blocks waiting for a
	// rate-limiter token before giving up and rejecting with
	// ErrRateLimited. Zero means Submit never blocks: it rejects
	// immediately if no token is available.
	SubmitTimeout time.Duration
}

// DefaultConfig returns sane defaults for symbol: unbounded slab growth,
// no rate limiting, metrics enabled.
func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:        symbol,
		TickSize:      1,
		SlabBlockSize: 4096,
		EnableMetrics: true,
	}
}
