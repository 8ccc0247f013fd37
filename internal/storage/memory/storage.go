// Package memory provides in-memory implementations of the customer,
// product and sale repositories. It backs tests and the "memory" store
// driver.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"api_commerce/internal/domain"
	"api_commerce/internal/salejoin"
)

type txKey struct{}

// LocalStorage holds every collection behind one lock. Writes are
// serialized through writeMu so that WithinTx can restore a snapshot on
// failure without losing concurrent writes.
type LocalStorage struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	customers      map[int64]domain.Customer
	products       map[int64]domain.Product
	headers        []salejoin.Header
	lines          []salejoin.Line
	nextCustomerID int64
	nextProductID  int64
	nextSaleID     int64

	now func() time.Time
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		customers: map[int64]domain.Customer{},
		products:  map[int64]domain.Product{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Customers returns the customer repository view of l.
func (l *LocalStorage) Customers() *CustomerStorage {
	return &CustomerStorage{l: l}
}

// Products returns the product repository view of l.
func (l *LocalStorage) Products() *ProductStorage {
	return &ProductStorage{l: l}
}

// Sales returns the sale repository view of l. Reads are joined against
// the customer and product views of the same storage.
func (l *LocalStorage) Sales(logger *zap.Logger) *SaleStorage {
	return &SaleStorage{
		l:         l,
		assembler: salejoin.NewAssembler(l.Customers(), l.Products(), logger),
	}
}

// WithinTx runs fn holding the write lock. If fn fails every collection is
// restored to its state before the call.
func (l *LocalStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	snap := l.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		l.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lockWrite serializes a single write with transactions. The returned
// function releases it.
func (l *LocalStorage) lockWrite(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	l.writeMu.Lock()
	return l.writeMu.Unlock
}

type snapshot struct {
	customers      map[int64]domain.Customer
	products       map[int64]domain.Product
	headers        []salejoin.Header
	lines          []salejoin.Line
	nextCustomerID int64
	nextProductID  int64
	nextSaleID     int64
}

func (l *LocalStorage) snapshot() snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	products := make(map[int64]domain.Product, len(l.products))
	for id, p := range l.products {
		products[id] = p.Clone()
	}
	customers := make(map[int64]domain.Customer, len(l.customers))
	for id, c := range l.customers {
		customers[id] = c
	}
	return snapshot{
		customers:      customers,
		products:       products,
		headers:        slices.Clone(l.headers),
		lines:          slices.Clone(l.lines),
		nextCustomerID: l.nextCustomerID,
		nextProductID:  l.nextProductID,
		nextSaleID:     l.nextSaleID,
	}
}

func (l *LocalStorage) restore(s snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.customers = s.customers
	l.products = s.products
	l.headers = s.headers
	l.lines = s.lines
	l.nextCustomerID = s.nextCustomerID
	l.nextProductID = s.nextProductID
	l.nextSaleID = s.nextSaleID
}
