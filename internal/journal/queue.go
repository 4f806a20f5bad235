// Package journal implements the asynchronous sale audit trail: a
// bounded in-memory queue of sale events drained by an autoscaled worker
// pool into a ring of recent events.
package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/pos-checkout-service/internal/model"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

// queue is a buffered sale-event queue with a background broker.
type queue struct {
	mu           sync.Mutex
	backlog      []model.SaleEvent
	notify       chan struct{}
	out          chan model.SaleEvent
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

func newQueue(outBuffer int) *queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.SaleEvent, outBuffer),
	}
}

func (q *queue) start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

// broker moves backlog items to the output channel.
func (q *queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			if sz := q.backlogSize(); sz > highWatermark {
				obs.Logger.Warn("journal backlog exceeds high watermark", "backlog_size", sz, "high_watermark", highWatermark)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

func (q *queue) enqueue(ev model.SaleEvent) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *queue) backlogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// depth is backlog plus buffered output items.
func (q *queue) depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

func (q *queue) markProcessed() { q.processed.Add(1) }

func (q *queue) metrics() (enq, proc uint64, backlog, depth int) {
	enq = q.enqueued.Load()
	proc = q.processed.Load()
	backlog = q.backlogSize()
	depth = q.depth()
	return enq, proc, backlog, depth
}

func (q *queue) closeIntake() { q.shuttingDown.Store(true) }

func (q *queue) isShuttingDown() bool { return q.shuttingDown.Load() }

// sequencer provides monotonically increasing event sequence numbers.
type sequencer struct{ n atomic.Uint64 }

func (s *sequencer) next() uint64 { return s.n.Add(1) }
