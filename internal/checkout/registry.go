package checkout

import "sync"

// Registry scopes one Session per register id and guards each with its
// own mutex. Scans from different registers never contend; operations on
// the same register serialize for their whole duration.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registerSession
}

type registerSession struct {
	mu      sync.Mutex
	session *Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*registerSession)}
}

// Acquire returns the register's session with its lock held, together
// with the release func. Callers must release on every path.
func (r *Registry) Acquire(registerID string) (*Session, func()) {
	r.mu.Lock()
	rs, ok := r.sessions[registerID]
	if !ok {
		rs = &registerSession{session: NewSession()}
		r.sessions[registerID] = rs
	}
	r.mu.Unlock()

	rs.mu.Lock()
	return rs.session, rs.mu.Unlock
}
