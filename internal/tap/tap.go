// Package tap provides the system-level keyboard interception source.
//
// A Source installs a key-down listener at one of two scopes: the session
// scope (primary) or the lower-level HID scope (fallback), and delivers each
// decoded key to a callback. The callback runs on the listener's delivery
// goroutine and must not block; on some platforms the interception point
// gates real system input delivery.
//
// Platform support:
//   - macOS: CGEventTap (requires Accessibility permission)
//   - Linux: /dev/input/event* (requires input group or root)
//
// Other platforms report not available; the engine then runs degraded-inert.
package tap

import (
	"context"
	"errors"
	"sync"
)

// MaxEventRunes bounds the decoded characters per key event. Dead-key
// composition can yield multi-unit sequences; anything beyond the bound is
// truncated rather than crashing the decode.
const MaxEventRunes = 8

// Scope selects the interception level.
type Scope int

const (
	// ScopeSession intercepts at the login-session level.
	ScopeSession Scope = iota
	// ScopeHID intercepts at the device level, below the session.
	ScopeHID
)

// String returns the scope name used in logs.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopeHID:
		return "hid"
	default:
		return "unknown"
	}
}

// Event is one decoded key-down: either a backspace signal or a short rune
// sequence (usually one rune).
type Event struct {
	Runes     []rune
	Backspace bool
}

// Callback receives decoded key events. It must be non-blocking.
type Callback func(Event)

// Source is a platform keyboard interception point.
type Source interface {
	// Start installs the listener and begins delivering events to fn.
	// The listener runs until Stop is called or ctx is cancelled.
	Start(ctx context.Context, fn Callback) error

	// Stop tears down the listener and waits for delivery to cease.
	Stop() error

	// Available reports whether interception can work on this platform
	// with current permissions, with a human-readable status.
	Available() (bool, string)

	// Scope returns the interception scope this source uses.
	Scope() Scope
}

// Sentinel errors shared by platform sources.
var (
	ErrNotAvailable     = errors.New("keyboard interception not available on this platform")
	ErrPermissionDenied = errors.New("insufficient permissions for keyboard interception")
	ErrAlreadyRunning   = errors.New("source already running")
)

// New creates a Source for the current platform at the given scope.
func New(scope Scope) Source {
	return newPlatformSource(scope)
}

// Simulated is an in-process Source for tests. Events are fed with Press*
// and delivered synchronously to the callback.
type Simulated struct {
	mu       sync.Mutex
	scope    Scope
	fn       Callback
	running  bool
	installs int
}

// NewSimulated creates a simulated source.
func NewSimulated(scope Scope) *Simulated {
	return &Simulated{scope: scope}
}

// Start records the callback and marks the source installed.
func (s *Simulated) Start(ctx context.Context, fn Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.fn = fn
	s.running = true
	s.installs++
	return nil
}

// Stop marks the source stopped.
func (s *Simulated) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Available always succeeds for the simulated source.
func (s *Simulated) Available() (bool, string) {
	return true, "simulated source (for testing)"
}

// Scope returns the configured scope.
func (s *Simulated) Scope() Scope { return s.scope }

// Installs returns how many times Start succeeded.
func (s *Simulated) Installs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installs
}

// Running reports whether the source is started.
func (s *Simulated) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Press delivers a single rune event.
func (s *Simulated) Press(r rune) {
	s.deliver(Event{Runes: []rune{r}})
}

// PressString delivers one event per rune of text.
func (s *Simulated) PressString(text string) {
	for _, r := range text {
		s.Press(r)
	}
}

// PressBackspace delivers a backspace event.
func (s *Simulated) PressBackspace() {
	s.deliver(Event{Backspace: true})
}

// PressRunes delivers a single multi-rune event, as produced by dead-key
// composition.
func (s *Simulated) PressRunes(rs []rune) {
	s.deliver(Event{Runes: rs})
}

func (s *Simulated) deliver(ev Event) {
	s.mu.Lock()
	fn := s.fn
	running := s.running
	s.mu.Unlock()
	if running && fn != nil {
		fn(ev)
	}
}

var _ Source = (*Simulated)(nil)
