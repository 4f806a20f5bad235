// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents one catalog record. Deleted products stay in the
// catalog but are invisible to lookups (soft delete).
type Product struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Sold        int64           `json:"sold"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Deleted     bool            `json:"-"`
}

// ScanItem is one line of an incoming scan request.
type ScanItem struct {
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity"`
}

// ScanEntry is one staged purchase line. Name is captured at scan time
// and does not track later catalog renames. Quantity accumulates when
// the same barcode is scanned again.
type ScanEntry struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// ReceiptLine is one resolved line of a committed checkout. Product
// carries the catalog state after the decrement was applied.
type ReceiptLine struct {
	Product   Product         `json:"product"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	ID         string          `json:"id"`
	RegisterID string          `json:"register_id"`
	Lines      []ReceiptLine   `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Finished   bool            `json:"is_finished"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SaleEventKind distinguishes journal entries.
type SaleEventKind string

const (
	SaleEventCheckout     SaleEventKind = "checkout"
	SaleEventCancellation SaleEventKind = "cancellation"
)

// SaleEvent is one audit journal record. Checkout events carry receipt
// lines and a total; cancellation events carry the abandoned entries.
type SaleEvent struct {
	Sequence   uint64          `json:"sequence"`
	Kind       SaleEventKind   `json:"kind"`
	RegisterID string          `json:"register_id"`
	ReceiptID  string          `json:"receipt_id,omitempty"`
	Lines      []ReceiptLine   `json:"lines,omitempty"`
	Entries    []ScanEntry     `json:"entries,omitempty"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}
