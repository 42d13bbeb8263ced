// Package link classifies radio link health from frame-arrival timing.
package link

import "time"

// State is the connection classification for one link.
type State int

const (
	// StateSearching means no valid frame has been seen yet, or the link
	// is being re-acquired after a loss.
	StateSearching State = iota
	// StateConnected means a valid frame arrived within the freshness
	// window.
	StateConnected
	// StateLost is a momentary state: it is reported once when the
	// freshness window expires, then the tracker returns to Searching.
	StateLost
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateConnected:
		return "connected"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Transition is one observed state change.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// DefaultTimeout is the freshness window after which a silent link is
// declared lost.
const DefaultTimeout = 1000 * time.Millisecond

// Tracker tracks link liveness for a single link. It performs no I/O and
// holds no clock of its own; callers pass the current monotonic time into
// Observe and Check. Not safe for concurrent use.
type Tracker struct {
	state    State
	lastSeen time.Time
	timeout  time.Duration
}

// NewTracker returns a tracker in the Searching state. A non-positive
// timeout selects DefaultTimeout.
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{state: StateSearching, timeout: timeout}
}

// State returns the current classification. Lost is never returned here;
// it only appears inside transitions.
func (t *Tracker) State() State {
	return t.state
}

// LastSeen returns the arrival time of the most recent valid frame.
func (t *Tracker) LastSeen() time.Time {
	return t.lastSeen
}

// Observe records the arrival of one valid frame at the given time and
// returns any resulting transitions.
func (t *Tracker) Observe(now time.Time) []Transition {
	t.lastSeen = now
	if t.state == StateSearching {
		t.state = StateConnected
		return []Transition{{From: StateSearching, To: StateConnected, At: now}}
	}
	return nil
}

// Check evaluates the freshness window against the given time. When a
// connected link has been silent past the timeout it emits exactly one
// Lost transition followed immediately by the return to Searching.
func (t *Tracker) Check(now time.Time) []Transition {
	if t.state != StateConnected {
		return nil
	}
	if now.Sub(t.lastSeen) <= t.timeout {
		return nil
	}
	t.state = StateSearching
	return []Transition{
		{From: StateConnected, To: StateLost, At: now},
		{From: StateLost, To: StateSearching, At: now},
	}
}
