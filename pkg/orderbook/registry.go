package orderbook

import (
	"sync"

	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchbook/bookerrors"
)

// Registry holds one Book per symbol, creating a book on first use.
// Grounded on the teacher's PriceLevelManager.GetOrderBook
// (read-lock fast path, write-lock create-on-miss with a re-check).
// This is a lifecycle convenience only: it does not route an order
// across symbols or otherwise know about cross-book semantics.
type Registry struct {
	mu     sync.RWMutex
	books  map[string]*Book
	logger *zap.Logger
	newCfg func(symbol string) Config
}

// NewRegistry creates an empty registry. newCfg builds the Config for a
// symbol seen for the first time; if nil, DefaultConfig is used.
func NewRegistry(logger *zap.Logger, newCfg func(symbol string) Config) *Registry {
	if newCfg == nil {
		newCfg = DefaultConfig
	}
	return &Registry{
		books:  make(map[string]*Book),
		logger: logger,
		newCfg: newCfg,
	}
}

// Get returns the book for symbol, creating it on first access.
func (r *Registry) Get(symbol string) *Book {
	r.mu.RLock()
	if b, ok := r.books[symbol]; ok {
		r.mu.RUnlock()
		return b
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[symbol]; ok {
		return b
	}
	b := New(r.newCfg(symbol), r.logger)
	r.books[symbol] = b
	return b
}

// Lookup returns the book for symbol without creating one, and reports
// whether it existed.
func (r *Registry) Lookup(symbol string) (*Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[symbol]
	return b, ok
}

// MustLookup returns the book for symbol or a SymbolNotFound error.
func (r *Registry) MustLookup(symbol string) (*Book, error) {
	b, ok := r.Lookup(symbol)
	if !ok {
		return nil, bookerrors.New(bookerrors.ErrSymbolNotFound, "no book registered for symbol").WithSymbol(symbol)
	}
	return b, nil
}

// Symbols returns the symbols currently registered.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.books))
	for s := range r.books {
		out = append(out, s)
	}
	return out
}
