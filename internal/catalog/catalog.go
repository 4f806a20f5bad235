// Package catalog defines the product inventory contract consumed by the
// checkout core, together with a Postgres implementation and an in-memory
// implementation used for development and tests.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

// ErrNotFound is returned when a barcode does not resolve to a live
// (non-deleted) product.
var ErrNotFound = errors.New("product not found")

// ErrUnavailable wraps storage-level failures (connection loss, timeouts,
// cancelled contexts). Callers may retry the whole operation.
var ErrUnavailable = errors.New("catalog unavailable")

// InsufficientStockError reports that a decrement would drive quantity
// below zero. It carries the product name and the remaining stock so the
// operator can see what went wrong.
type InsufficientStockError struct {
	Barcode   string
	Name      string
	Requested int64
	Remaining int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, %d remaining", e.Name, e.Requested, e.Remaining)
}

// Catalog is the read/transaction surface the checkout core depends on.
type Catalog interface {
	// FindByBarcode resolves a live product. Soft-deleted products are
	// treated as absent.
	FindByBarcode(ctx context.Context, barcode string) (model.Product, error)
	// Begin opens a transaction scope. Every Tx must end in exactly one
	// Commit or Rollback; prefer WithTx over calling Begin directly.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single transactional scope against the catalog. Reads through
// a Tx lock the rows they touch so a concurrent checkout cannot pass the
// same stock check.
type Tx interface {
	FindByBarcode(ctx context.Context, barcode string) (model.Product, error)
	// DecrementAndSell applies quantity -= qty, sold += qty and returns
	// the updated product. Fails with InsufficientStockError when stock
	// is short and ErrNotFound when the product vanished.
	DecrementAndSell(ctx context.Context, barcode string, qty int64) (model.Product, error)
	Commit() error
	Rollback() error
}

// Store is the full catalog surface used by the HTTP layer: the checkout
// contract plus the product management operations.
type Store interface {
	Catalog
	Create(ctx context.Context, p model.Product) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	UpdateStock(ctx context.Context, barcode string, quantity int64) (model.Product, error)
	SoftDelete(ctx context.Context, barcode string) error
}

// WithTx runs fn inside one transaction scope. The transaction is rolled
// back on any exit path that did not commit, so fn can return early on
// error without leaking partial decrements.
func WithTx(ctx context.Context, c Catalog, fn func(Tx) error) error {
	tx, err := c.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
