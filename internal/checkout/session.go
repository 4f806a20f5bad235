// Package checkout implements the point-of-sale scan/checkout core: the
// per-register scan session, the coordinator driving its lifecycle, and
// the atomic checkout transaction against the catalog.
package checkout

import "github.com/fairyhunter13/pos-checkout-service/internal/model"

// Session is the staging area of scanned items awaiting commit. Entries
// keep first-seen order; scanning a barcode again sums quantities. A
// Session does no I/O and is not safe for concurrent use on its own --
// the Registry serializes access per register.
type Session struct {
	entries map[string]*model.ScanEntry
	order   []string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{entries: make(map[string]*model.ScanEntry)}
}

// Merge stages qty units of barcode. The name is only recorded for a new
// entry; an existing entry keeps its scan-time name and accumulates.
func (s *Session) Merge(barcode, name string, qty int64) {
	if e, ok := s.entries[barcode]; ok {
		e.Quantity += qty
		return
	}
	s.entries[barcode] = &model.ScanEntry{Barcode: barcode, Name: name, Quantity: qty}
	s.order = append(s.order, barcode)
}

// IsEmpty reports whether nothing is staged.
func (s *Session) IsEmpty() bool { return len(s.entries) == 0 }

// Len returns the number of distinct staged barcodes.
func (s *Session) Len() int { return len(s.entries) }

// Clear drops every staged entry.
func (s *Session) Clear() {
	s.entries = make(map[string]*model.ScanEntry)
	s.order = nil
}

// Snapshot returns a first-seen-ordered copy of the staged entries.
func (s *Session) Snapshot() []model.ScanEntry {
	out := make([]model.ScanEntry, 0, len(s.order))
	for _, barcode := range s.order {
		out = append(out, *s.entries[barcode])
	}
	return out
}
