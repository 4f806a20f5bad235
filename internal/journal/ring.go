package journal

import (
	"sync"

	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

// ring keeps the most recent sale events in a fixed-capacity buffer.
type ring struct {
	mu   sync.Mutex
	buf  []model.SaleEvent
	next int
	full bool
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 256
	}
	return &ring{buf: make([]model.SaleEvent, capacity)}
}

func (r *ring) append(ev model.SaleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// recent returns the stored events newest-first.
func (r *ring) recent() []model.SaleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	if r.full {
		n = len(r.buf)
	}
	out := make([]model.SaleEvent, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.next - 1 - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
