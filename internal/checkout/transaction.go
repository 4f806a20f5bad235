package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

// commitLines converts staged entries into inventory decrements inside
// the given transaction, in session order. Each entry is re-fetched so a
// checkout never trusts scan-time stock. Any failure aborts the whole
// pass; the caller's transaction scope takes care of the rollback.
func commitLines(ctx context.Context, tx catalog.Tx, entries []model.ScanEntry) ([]model.ReceiptLine, decimal.Decimal, error) {
	lines := make([]model.ReceiptLine, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		p, err := tx.FindByBarcode(ctx, e.Barcode)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("checkout %s: %w", e.Barcode, err)
		}
		if p.Quantity < e.Quantity {
			return nil, decimal.Zero, &catalog.InsufficientStockError{
				Barcode:   e.Barcode,
				Name:      p.Name,
				Requested: e.Quantity,
				Remaining: p.Quantity,
			}
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(e.Quantity))
		updated, err := tx.DecrementAndSell(ctx, e.Barcode, e.Quantity)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("checkout %s: %w", e.Barcode, err)
		}
		lines = append(lines, model.ReceiptLine{Product: updated, Quantity: e.Quantity, LineTotal: lineTotal})
		total = total.Add(lineTotal)
	}
	return lines, total, nil
}
