package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

// Memory is an in-process Store keyed by barcode. It backs development
// mode when no database is configured, and the core tests. Transactions
// hold the store lock for their whole scope and keep an undo log, so a
// rolled back checkout leaves the catalog byte-for-byte as it was.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*model.Product
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{products: make(map[string]*model.Product)}
}

func (s *Memory) live(barcode string) (*model.Product, bool) {
	p, ok := s.products[barcode]
	if !ok || p.Deleted {
		return nil, false
	}
	return p, true
}

// FindByBarcode resolves a live product.
func (s *Memory) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, storageErr(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.live(barcode)
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return *p, nil
}

// Create inserts a product, assigning id and timestamps.
func (s *Memory) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, storageErr(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Sold = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Deleted = false
	s.products[p.Barcode] = &p
	return p, nil
}

// List returns all live products in unspecified order.
func (s *Memory) List(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Deleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

// UpdateStock replaces the on-hand quantity of a live product.
func (s *Memory) UpdateStock(ctx context.Context, barcode string, quantity int64) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, storageErr(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.live(barcode)
	if !ok {
		return model.Product{}, ErrNotFound
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

// SoftDelete hides a product from lookups.
func (s *Memory) SoftDelete(ctx context.Context, barcode string) error {
	if err := ctx.Err(); err != nil {
		return storageErr(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.live(barcode)
	if !ok {
		return ErrNotFound
	}
	p.Deleted = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Begin acquires the store lock for the transaction's lifetime. Commit or
// Rollback releases it; concurrent transactions serialize here, which is
// what makes the oversell check sound.
func (s *Memory) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr(err)
	}
	s.mu.Lock()
	return &memoryTx{store: s, undo: make(map[string]model.Product)}, nil
}

type memoryTx struct {
	store *Memory
	undo  map[string]model.Product
	done  bool
}

func (t *memoryTx) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, storageErr(err)
	}
	p, ok := t.store.live(barcode)
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return *p, nil
}

func (t *memoryTx) DecrementAndSell(ctx context.Context, barcode string, qty int64) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, storageErr(err)
	}
	p, ok := t.store.live(barcode)
	if !ok {
		return model.Product{}, ErrNotFound
	}
	if p.Quantity < qty {
		return model.Product{}, &InsufficientStockError{
			Barcode:   barcode,
			Name:      p.Name,
			Requested: qty,
			Remaining: p.Quantity,
		}
	}
	if _, touched := t.undo[barcode]; !touched {
		t.undo[barcode] = *p
	}
	p.Quantity -= qty
	p.Sold += qty
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for barcode, prev := range t.undo {
		saved := prev
		t.store.products[barcode] = &saved
	}
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}
