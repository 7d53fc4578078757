package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the connection lifecycle state
type State int

const (
	StateIdle State = iota
	StateStarting
	StateAwaitingPairing
	StateConnected
	StateLoggedOut // terminal: operator must re-pair from clean credentials
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateAwaitingPairing:
		return "awaiting_pairing"
	case StateConnected:
		return "connected"
	case StateLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// ErrLoggedOut is returned when starting after a terminal logout
var ErrLoggedOut = fmt.Errorf("logged out: credentials must be reset before reconnecting")

// Status is a point-in-time snapshot of the supervised connection
type Status struct {
	State       State
	QR          string // current pairing artifact, "" unless awaiting pairing
	ConnectedAt time.Time
}

// Connected reports whether the transport is up
func (s Status) Connected() bool {
	return s.State == StateConnected
}

// Uptime returns how long the connection has been open, 0 when down
func (s Status) Uptime() time.Duration {
	if !s.Connected() || s.ConnectedAt.IsZero() {
		return 0
	}
	return time.Since(s.ConnectedAt)
}

// Supervisor owns the transport connection lifecycle. The state machine
// itself is the single source of truth for "is a start in flight":
// overlapping Start calls collapse into the one attempt already running.
// Reconnects use a fixed delay and are unbounded; only an explicit
// logout stops them.
type Supervisor struct {
	mu          sync.Mutex
	state       State
	qr          string
	connectedAt time.Time

	dial     func(ctx context.Context) error
	delay    time.Duration
	schedule func(d time.Duration, fn func()) // swappable for tests

	ctx context.Context // carried across reconnect attempts
}

// NewSupervisor creates a supervisor over the given dial function
// (typically Client.Connect) with a fixed reconnect delay
func NewSupervisor(dial func(ctx context.Context) error, delay time.Duration) *Supervisor {
	if delay <= 0 {
		delay = 5 * time.Second
	}
	return &Supervisor{
		dial:     dial,
		delay:    delay,
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Start begins a connection attempt. Reentrant calls while an attempt
// is in flight are no-ops; starting after terminal logout is an error.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateStarting:
		s.mu.Unlock()
		return nil
	case StateLoggedOut:
		s.mu.Unlock()
		return ErrLoggedOut
	}
	s.state = StateStarting
	s.ctx = ctx
	s.mu.Unlock()

	if err := s.dial(ctx); err != nil {
		fmt.Printf("[Gateway] Connect failed: %v (retrying in %s)\n", err, s.delay)
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.scheduleReconnect()
		return nil
	}
	return nil
}

// HandleUpdate consumes one transport lifecycle event. Wire this to
// Client.OnConnectionUpdate.
func (s *Supervisor) HandleUpdate(u ConnectionUpdate) {
	s.mu.Lock()

	// A fresh pairing artifact invalidates the previous one. Logout is
	// terminal; a stray late artifact must not revive the session.
	if u.QR != "" {
		if s.state == StateLoggedOut {
			s.mu.Unlock()
			return
		}
		s.state = StateAwaitingPairing
		s.qr = u.QR
		s.mu.Unlock()
		fmt.Println("[Gateway] Pairing artifact refreshed")
		return
	}

	switch u.Connection {
	case "open":
		s.state = StateConnected
		s.qr = ""
		s.connectedAt = time.Now()
		s.mu.Unlock()
		fmt.Println("[Gateway] Connected")

	case "close":
		switch {
		case u.StatusCode == CodeLoggedOut:
			s.state = StateLoggedOut
			s.qr = ""
			s.mu.Unlock()
			fmt.Println("[Gateway] Logged out, no reconnect; re-pair with clean credentials")

		case u.StatusCode != 0:
			s.state = StateIdle
			s.mu.Unlock()
			fmt.Printf("[Gateway] Connection closed (code=%d), reconnecting in %s\n", u.StatusCode, s.delay)
			s.scheduleReconnect()

		default:
			// Benign local close (no status code): no reconnect
			s.mu.Unlock()
		}

	default:
		s.mu.Unlock()
	}
}

func (s *Supervisor) scheduleReconnect() {
	s.schedule(s.delay, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.Start(ctx); err != nil {
			fmt.Printf("[Gateway] Reconnect abandoned: %v\n", err)
		}
	})
}

// Snapshot returns the current status
func (s *Supervisor) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.state,
		QR:          s.qr,
		ConnectedAt: s.connectedAt,
	}
}
