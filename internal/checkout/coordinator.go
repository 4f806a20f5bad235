package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

// State is the lifecycle position of a register's session.
type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
)

// Recorder receives committed sale activity for the audit journal. A
// Recorder must never block the checkout path.
type Recorder interface {
	RecordCheckout(r model.Receipt)
	RecordCancellation(registerID string, entries []model.ScanEntry)
}

// Coordinator drives the scan/checkout lifecycle for every register.
// Journal and metrics are optional; a nil recorder or nil metrics simply
// records nothing.
type Coordinator struct {
	catalog  catalog.Catalog
	registry *Registry
	recorder Recorder
	metrics  *obs.Metrics
}

// NewCoordinator wires a coordinator over the given catalog.
func NewCoordinator(c catalog.Catalog, reg *Registry, rec Recorder, m *obs.Metrics) *Coordinator {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Coordinator{catalog: c, registry: reg, recorder: rec, metrics: m}
}

// State reports whether the register has anything staged.
func (c *Coordinator) State(registerID string) State {
	sess, release := c.registry.Acquire(registerID)
	defer release()
	if sess.IsEmpty() {
		return StateIdle
	}
	return StateScanning
}

// Scan validates the whole batch against the catalog and only then
// merges it into the register's session. A single unknown barcode or bad
// quantity rejects the call with the session untouched. Returns the full
// session contents after the merge.
func (c *Coordinator) Scan(ctx context.Context, registerID string, items []model.ScanItem) ([]model.ScanEntry, error) {
	if len(items) == 0 {
		c.metrics.ObserveScan("validation_error")
		return nil, &ValidationError{Reason: "at least one item is required"}
	}
	for _, it := range items {
		if it.Barcode == "" {
			c.metrics.ObserveScan("validation_error")
			return nil, &ValidationError{Reason: "barcode is required"}
		}
		if it.Quantity < 1 {
			c.metrics.ObserveScan("validation_error")
			return nil, &ValidationError{Reason: fmt.Sprintf("quantity for %s must be >= 1", it.Barcode)}
		}
	}

	// Resolve every barcode before touching the session.
	names := make(map[string]string, len(items))
	for _, it := range items {
		if _, ok := names[it.Barcode]; ok {
			continue
		}
		p, err := c.catalog.FindByBarcode(ctx, it.Barcode)
		if err != nil {
			c.metrics.ObserveScan(outcomeFor(err))
			return nil, fmt.Errorf("scan %s: %w", it.Barcode, err)
		}
		names[it.Barcode] = p.Name
	}

	sess, release := c.registry.Acquire(registerID)
	defer release()
	for _, it := range items {
		sess.Merge(it.Barcode, names[it.Barcode], it.Quantity)
	}
	entries := sess.Snapshot()
	c.metrics.ObserveScan("ok")
	obs.Logger.Info("scan_merged",
		"register_id", registerID,
		"items", len(items),
		"session_size", len(entries),
	)
	return entries, nil
}

// Finish commits the staged session as one atomic checkout. On success
// the session is cleared and a receipt returned; on any failure both the
// session and the catalog are left exactly as they were, so the operator
// can correct and retry without re-scanning.
func (c *Coordinator) Finish(ctx context.Context, registerID string) (model.Receipt, error) {
	sess, release := c.registry.Acquire(registerID)
	defer release()
	if sess.IsEmpty() {
		c.metrics.ObserveCheckout("empty_session", 0)
		return model.Receipt{}, ErrEmptySession
	}
	entries := sess.Snapshot()

	start := time.Now()
	var (
		lines []model.ReceiptLine
		total decimal.Decimal
	)
	err := catalog.WithTx(ctx, c.catalog, func(tx catalog.Tx) error {
		var txErr error
		lines, total, txErr = commitLines(ctx, tx, entries)
		return txErr
	})
	if err != nil {
		c.metrics.ObserveCheckout(outcomeFor(err), time.Since(start))
		obs.Logger.Warn("checkout_failed",
			"register_id", registerID,
			"session_size", len(entries),
			"error", err.Error(),
		)
		return model.Receipt{}, err
	}

	receipt := model.Receipt{
		ID:         uuid.NewString(),
		RegisterID: registerID,
		Lines:      lines,
		TotalPrice: total,
		Finished:   true,
		CreatedAt:  time.Now().UTC(),
	}
	sess.Clear()
	if c.recorder != nil {
		c.recorder.RecordCheckout(receipt)
	}
	c.metrics.ObserveCheckout("ok", time.Since(start))
	obs.Logger.Info("checkout_committed",
		"register_id", registerID,
		"receipt_id", receipt.ID,
		"lines", len(lines),
		"total_price", total.String(),
	)
	return receipt, nil
}

// Cancel drops the staged session without touching the catalog and
// returns the abandoned entries for audit.
func (c *Coordinator) Cancel(ctx context.Context, registerID string) ([]model.ScanEntry, error) {
	sess, release := c.registry.Acquire(registerID)
	defer release()
	if sess.IsEmpty() {
		return nil, ErrEmptySession
	}
	entries := sess.Snapshot()
	sess.Clear()
	if c.recorder != nil {
		c.recorder.RecordCancellation(registerID, entries)
	}
	c.metrics.ObserveCancellation()
	obs.Logger.Info("scan_cancelled",
		"register_id", registerID,
		"entries", len(entries),
	)
	return entries, nil
}

// outcomeFor buckets an error into a metrics label.
func outcomeFor(err error) string {
	var stockErr *catalog.InsufficientStockError
	var valErr *ValidationError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	case errors.Is(err, catalog.ErrUnavailable):
		return "unavailable"
	case errors.As(err, &valErr):
		return "validation_error"
	case errors.Is(err, ErrEmptySession):
		return "empty_session"
	default:
		return "error"
	}
}
