// Package inject synthesizes keystrokes: backspaces to erase a matched
// trigger plus its delimiter, then the replacement text as if the user had
// typed it.
//
// All injection runs behind the engine's reentrancy guard: the injecting
// flag is set before the first synthetic key and cleared only after the full
// sequence (including the settling delay) completes, so the interception
// callback treats the executor's own keystrokes as pass-through.
//
// Platform support:
//   - macOS: CGEventPost with a unicode payload
//   - Linux: a virtual uinput keyboard device
//
// Synthetic keystroke failures are logged, never surfaced: a failed key is
// indistinguishable from a delivered one at this layer.
package inject

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"expandd/internal/diag"
)

// DefaultSettleDelay lets the OS/input-method pipeline drain after a
// synthetic sequence before the injecting guard is released.
const DefaultSettleDelay = 10 * time.Millisecond

// ErrNotAvailable is returned when no injection backend exists.
var ErrNotAvailable = errors.New("keystroke injection not available on this platform")

// Injector produces synthetic keystrokes.
type Injector interface {
	// Backspace emits n backspace key-presses.
	Backspace(n int) error

	// TypeText emits text as a synthetic key sequence.
	TypeText(text string) error
}

// New creates an Injector for the current platform.
func New() Injector {
	return newPlatformInjector()
}

// Guard is the slice of engine state the executor needs: the reentrancy
// flag and the dry-run switch.
type Guard interface {
	SetInjecting(bool)
	DryRun() bool
}

// Executor runs injection sequences under the guard discipline.
type Executor struct {
	guard  Guard
	inj    Injector
	sink   *diag.Sink
	settle time.Duration
}

// NewExecutor creates an executor. A non-positive settle delay uses
// DefaultSettleDelay.
func NewExecutor(guard Guard, inj Injector, sink *diag.Sink, settle time.Duration) *Executor {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Executor{guard: guard, inj: inj, sink: sink, settle: settle}
}

// Inject erases backspaces characters and types the replacement. In dry-run
// mode only the intended action is logged.
func (x *Executor) Inject(backspaces int, replacement string) {
	if x.guard.DryRun() {
		x.sink.Logf("inject: dry-run would delete %d and type %d chars",
			backspaces, utf8.RuneCountInString(replacement))
		return
	}

	x.guard.SetInjecting(true)
	defer x.guard.SetInjecting(false)

	if err := x.inj.Backspace(backspaces); err != nil {
		x.sink.Logf("inject: backspace failed: %v", err)
	}
	if err := x.inj.TypeText(replacement); err != nil {
		x.sink.Logf("inject: type failed: %v", err)
	}
	time.Sleep(x.settle)
}

// InjectText types text directly, bypassing match detection. The guard
// discipline is the same as for matched injection; dry-run does not apply.
func (x *Executor) InjectText(text string) {
	x.guard.SetInjecting(true)
	defer x.guard.SetInjecting(false)

	x.sink.Logf("inject: typing %d chars", utf8.RuneCountInString(text))
	if err := x.inj.TypeText(text); err != nil {
		x.sink.Logf("inject: type failed: %v", err)
	}
	time.Sleep(x.settle)
}

// Recording is an Injector for tests that records the synthetic sequence
// instead of producing input.
type Recording struct {
	mu  sync.Mutex
	ops []Op
}

// Op is one recorded injection operation.
type Op struct {
	Backspaces int
	Text       string
}

// NewRecording creates a recording injector.
func NewRecording() *Recording {
	return &Recording{}
}

// Backspace records a backspace burst.
func (r *Recording) Backspace(n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Backspaces: n})
	return nil
}

// TypeText records typed text.
func (r *Recording) TypeText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Text: text})
	return nil
}

// Ops returns the recorded operations in order.
func (r *Recording) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

var _ Injector = (*Recording)(nil)
