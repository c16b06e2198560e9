// Package notify is the one-way boundary to the status-indicator layer
// (tray icon, desktop notifications). Notifications are best-effort: they
// never block the caller and carry no acknowledgment.
package notify

import "fmt"

// IconState is the status-indicator state requested by the engine or the
// control surface.
type IconState string

const (
	IconActive  IconState = "active"
	IconPaused  IconState = "paused"
	IconWarning IconState = "warning"
	IconError   IconState = "error"
)

// ParseIconState validates a state name from the control surface. Unknown
// names are a recoverable error for the caller, not a fault.
func ParseIconState(s string) (IconState, error) {
	switch IconState(s) {
	case IconActive, IconPaused, IconWarning, IconError:
		return IconState(s), nil
	default:
		return "", fmt.Errorf("invalid icon state: %q", s)
	}
}

// LifecycleEvent identifies engine lifecycle transitions worth surfacing.
type LifecycleEvent string

const (
	LifecycleStarted  LifecycleEvent = "started"
	LifecycleStopped  LifecycleEvent = "stopped"
	LifecycleDegraded LifecycleEvent = "degraded"
)

// Notifier receives pause-state, lifecycle, and indicator notifications.
type Notifier interface {
	// PauseStateChanged fires on every pause/resume transition.
	PauseStateChanged(paused bool, byUser bool)

	// EngineLifecycle fires on start, stop, and degraded-install events.
	EngineLifecycle(event LifecycleEvent, detail string)

	// IconStateChanged fires when the control surface drives the status
	// indicator to a specific state.
	IconStateChanged(state IconState)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) PauseStateChanged(bool, bool)           {}
func (Nop) EngineLifecycle(LifecycleEvent, string) {}
func (Nop) IconStateChanged(IconState)             {}

// Multi fans notifications out to several notifiers.
type Multi []Notifier

func (m Multi) PauseStateChanged(paused, byUser bool) {
	for _, n := range m {
		n.PauseStateChanged(paused, byUser)
	}
}

func (m Multi) EngineLifecycle(event LifecycleEvent, detail string) {
	for _, n := range m {
		n.EngineLifecycle(event, detail)
	}
}

func (m Multi) IconStateChanged(state IconState) {
	for _, n := range m {
		n.IconStateChanged(state)
	}
}

// New creates the platform notifier. Platforms without a notification
// surface return Nop.
func New() Notifier {
	return newPlatformNotifier()
}

// PauseRecord is one recorded pause transition.
type PauseRecord struct {
	Paused bool
	ByUser bool
}

// LifecycleRecord is one recorded lifecycle event.
type LifecycleRecord struct {
	Event  LifecycleEvent
	Detail string
}

// Recorder captures notifications for tests.
type Recorder struct {
	Pauses     []PauseRecord
	Lifecycles []LifecycleRecord
	Icons      []IconState
}

func (r *Recorder) PauseStateChanged(paused, byUser bool) {
	r.Pauses = append(r.Pauses, PauseRecord{Paused: paused, ByUser: byUser})
}

func (r *Recorder) EngineLifecycle(event LifecycleEvent, detail string) {
	r.Lifecycles = append(r.Lifecycles, LifecycleRecord{Event: event, Detail: detail})
}

func (r *Recorder) IconStateChanged(state IconState) {
	r.Icons = append(r.Icons, state)
}

var (
	_ Notifier = Nop{}
	_ Notifier = Multi{}
	_ Notifier = (*Recorder)(nil)
)
