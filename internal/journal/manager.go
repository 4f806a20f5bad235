package journal

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/config"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

// Manager coordinates workers recording journal events and scaling the
// pool with the backlog. It implements the checkout Recorder contract;
// recording is fire-and-forget so a slow journal never delays a sale.
type Manager struct {
	cfg    config.Config
	q      *queue
	recent *ring
	seq    sequencer
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager from the journal configuration.
func NewManager(cfg config.Config) *Manager {
	return &Manager{cfg: cfg, q: newQueue(128), recent: newRing(cfg.JournalRecentCapacity)}
}

// Start begins processing and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.start(m.ctx, m.cfg.JournalHighWatermark)
	m.addWorkers(m.cfg.JournalInitialWorkerCount)
	go m.scaler()
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

// RecordCheckout enqueues a committed checkout for the audit trail.
func (m *Manager) RecordCheckout(r model.Receipt) {
	ev := model.SaleEvent{
		Sequence:   m.seq.next(),
		Kind:       model.SaleEventCheckout,
		RegisterID: r.RegisterID,
		ReceiptID:  r.ID,
		Lines:      r.Lines,
		Total:      r.TotalPrice,
		OccurredAt: r.CreatedAt,
	}
	if !m.q.enqueue(ev) {
		obs.Logger.Warn("journal_dropped_event", "kind", string(ev.Kind), "receipt_id", r.ID)
	}
}

// RecordCancellation enqueues an abandoned session for the audit trail.
func (m *Manager) RecordCancellation(registerID string, entries []model.ScanEntry) {
	ev := model.SaleEvent{
		Sequence:   m.seq.next(),
		Kind:       model.SaleEventCancellation,
		RegisterID: registerID,
		Entries:    entries,
		Total:      decimal.Zero,
		OccurredAt: time.Now().UTC(),
	}
	if !m.q.enqueue(ev) {
		obs.Logger.Warn("journal_dropped_event", "kind", string(ev.Kind), "register_id", registerID)
	}
}

// Recent returns the recorded events newest-first.
func (m *Manager) Recent() []model.SaleEvent { return m.recent.recent() }

// scaler adjusts worker count based on backlog and configuration.
func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.JournalScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.backlogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.JournalScaleUpBacklogPerWorker && wc < m.cfg.JournalWorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= m.cfg.JournalScaleDownIdleTicks && wc > m.cfg.JournalWorkerMin {
					m.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("journal workers scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.workerCancels) {
		n = len(m.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := m.workerCancels[len(m.workerCancels)-1]
		m.workerCancels = m.workerCancels[:len(m.workerCancels)-1]
		c()
	}
	obs.Logger.Info("journal workers scaled", "worker_count", len(m.workerCancels))
}

// worker drains events from the queue into the recent ring and the log.
func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.q.out:
			m.recent.append(ev)
			obs.Logger.Info("sale_recorded",
				"sequence", ev.Sequence,
				"kind", string(ev.Kind),
				"register_id", ev.RegisterID,
				"receipt_id", ev.ReceiptID,
				"total", ev.Total.String(),
			)
			m.q.markProcessed()
		}
	}
}

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// BacklogSize returns pending items in the queue.
func (m *Manager) BacklogSize() int { return m.q.backlogSize() }

// QueueDepth returns backlog plus buffered output items.
func (m *Manager) QueueDepth() int { return m.q.depth() }

// Metrics exposes the underlying queue counters.
func (m *Manager) Metrics() (enq, proc uint64, backlog, depth int) { return m.q.metrics() }

// CloseIntake disallows future event recording.
func (m *Manager) CloseIntake() { m.q.closeIntake() }

// IsShuttingDown reports whether new events are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.isShuttingDown() }

// DrainUntil blocks until the journal is fully drained or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, depth := m.q.metrics()
		if backlog == 0 && depth == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
