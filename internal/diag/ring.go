// Package diag provides the engine's diagnostics surface: a bounded ring of
// recent log lines exposed read-only to the control surface, and a bounded
// heartbeat task for listener liveness.
package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// DefaultRingCap is the default number of retained log lines.
const DefaultRingCap = 1000

// Ring is a bounded, append-only log of recent lines. Once the cap is
// exceeded the oldest line is evicted. Safe for concurrent use from the
// control surface, the listener thread, and the heartbeat task.
type Ring struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewRing creates a ring holding at most max lines. Non-positive max uses
// DefaultRingCap.
func NewRing(max int) *Ring {
	if max <= 0 {
		max = DefaultRingCap
	}
	return &Ring{max: max}
}

// Append adds a line, evicting the oldest once the cap is exceeded.
func (r *Ring) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, line)
	if len(r.lines) > r.max {
		r.lines = r.lines[len(r.lines)-r.max:]
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len returns the number of retained lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Sink couples the ring with a structured logger so one call feeds both the
// in-process log view and the process log.
type Sink struct {
	ring *Ring
	log  *slog.Logger
}

// NewSink creates a sink. Either argument may be nil.
func NewSink(ring *Ring, log *slog.Logger) *Sink {
	return &Sink{ring: ring, log: log}
}

// Logf formats a line, appends it to the ring, and logs it at info level.
func (s *Sink) Logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if s.ring != nil {
		s.ring.Append(line)
	}
	if s.log != nil {
		s.log.Info(line)
	}
}

// Ring returns the underlying ring, or nil.
func (s *Sink) Ring() *Ring {
	return s.ring
}
