package engine

import (
	"context"
	"sync"
	"time"

	"expandd/internal/diag"
	"expandd/internal/inject"
	"expandd/internal/notify"
	"expandd/internal/rules"
	"expandd/internal/tap"
)

// Config holds engine tuning knobs.
type Config struct {
	// BufferCap is the rolling-buffer capacity in runes (default 128).
	BufferCap int

	// HeartbeatInterval is the liveness heartbeat period (default 3s).
	HeartbeatInterval time.Duration

	// HeartbeatCycles bounds the heartbeat task (default 10).
	HeartbeatCycles int
}

// Params are the engine's collaborators, injected at composition time.
// Nil fields get inert defaults so tests construct only what they assert on.
type Params struct {
	State    *State
	Rules    *rules.Store
	Exec     *inject.Executor
	Sink     *diag.Sink
	Notifier notify.Notifier

	// NewSource creates the interception source for a scope. Defaults to
	// the platform source; tests supply simulated sources.
	NewSource func(tap.Scope) tap.Source
}

// Engine wires the interception source, the rolling buffer and matcher, and
// the injection executor together around shared State.
type Engine struct {
	cfg      Config
	state    *State
	rules    *rules.Store
	exec     *inject.Executor
	sink     *diag.Sink
	notifier notify.Notifier
	buffer   *Buffer

	newSource func(tap.Scope) tap.Source

	mu     sync.Mutex
	source tap.Source
	cancel context.CancelFunc
	hb     *diag.Heartbeat
}

// New creates an engine. The engine does not start listening until Start.
func New(cfg Config, p Params) *Engine {
	if p.State == nil {
		p.State = NewState()
	}
	if p.Rules == nil {
		p.Rules = rules.NewStore()
	}
	if p.Sink == nil {
		p.Sink = diag.NewSink(nil, nil)
	}
	if p.Notifier == nil {
		p.Notifier = notify.Nop{}
	}
	if p.NewSource == nil {
		p.NewSource = tap.New
	}
	if p.Exec == nil {
		p.Exec = inject.NewExecutor(p.State, inject.New(), p.Sink, 0)
	}

	return &Engine{
		cfg:       cfg,
		state:     p.State,
		rules:     p.Rules,
		exec:      p.Exec,
		sink:      p.Sink,
		notifier:  p.Notifier,
		buffer:    NewBuffer(cfg.BufferCap),
		newSource: p.NewSource,
	}
}

// State returns the shared engine state.
func (e *Engine) State() *State { return e.state }

// Rules returns the shared rule store.
func (e *Engine) Rules() *rules.Store { return e.rules }

// Notifier returns the status-surface notifier.
func (e *Engine) Notifier() notify.Notifier { return e.notifier }

// Start installs the interception source and begins matching. Starting a
// running engine is a no-op that reports success.
//
// Installation tries the session scope first, then falls back to the HID
// scope. If both fail the engine still starts, degraded and inert: the
// failure is a permission issue the user resolves out-of-band, so it is
// logged and surfaced as a lifecycle notification rather than an error.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Running() {
		e.sink.Logf("engine: already running")
		return nil
	}
	e.state.SetRunning(true)

	ctx, e.cancel = context.WithCancel(ctx)
	e.source = e.installSource(ctx)

	e.hb = diag.NewHeartbeat(diag.HeartbeatConfig{
		Interval:   e.cfg.HeartbeatInterval,
		Cycles:     e.cfg.HeartbeatCycles,
		EventCount: e.state.EventCount,
		Running:    e.state.Running,
	}, e.sink)
	e.hb.Start(ctx)

	if e.source == nil {
		e.sink.Logf("engine: no tap installed; running inert")
		e.notifier.EngineLifecycle(notify.LifecycleDegraded, "keyboard interception unavailable")
	} else {
		e.sink.Logf("engine: started (%s scope)", e.source.Scope())
		e.notifier.EngineLifecycle(notify.LifecycleStarted, e.source.Scope().String())
	}
	return nil
}

// installSource tries each interception scope in order and returns the
// first that installs, or nil.
func (e *Engine) installSource(ctx context.Context) tap.Source {
	for _, scope := range []tap.Scope{tap.ScopeSession, tap.ScopeHID} {
		src := e.newSource(scope)
		if err := src.Start(ctx, e.HandleKey); err != nil {
			e.sink.Logf("engine: %s tap failed: %v", scope, err)
			continue
		}
		e.sink.Logf("engine: %s tap installed", scope)
		return src
	}
	return nil
}

// Stop flips the running flag and tears the interception source down.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Running() {
		return nil
	}
	e.state.SetRunning(false)

	if e.cancel != nil {
		e.cancel()
	}
	if e.hb != nil {
		e.hb.Stop()
	}
	var err error
	if e.source != nil {
		err = e.source.Stop()
		e.source = nil
	}
	e.buffer.Reset()

	e.sink.Logf("engine: stopped")
	e.notifier.EngineLifecycle(notify.LifecycleStopped, "")
	return err
}

// ActiveScope names the installed interception scope, or "none".
func (e *Engine) ActiveScope() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.source == nil {
		return "none"
	}
	return e.source.Scope().String()
}

// HandleKey is the per-key-down hot path. Checks are ordered cheapest-first
// and every early return passes the event through untouched: not running,
// mid-injection (the executor's own keystrokes must not re-enter the
// buffer), or paused.
func (e *Engine) HandleKey(ev tap.Event) {
	s := e.state
	if !s.Running() {
		return
	}
	if s.Injecting() {
		return
	}
	if s.PausedByUser() || s.PausedBySecureInput() {
		return
	}

	s.IncEventCount()

	if ev.Backspace {
		e.buffer.Backspace()
		return
	}
	if len(ev.Runes) == 0 {
		return
	}
	if s.Verbose() {
		e.sink.Logf("engine: key %q", string(ev.Runes))
	}

	e.buffer.Append(ev.Runes)

	// Only a lone delimiter rune triggers evaluation; composed sequences
	// never end a trigger.
	if len(ev.Runes) != 1 || !isDelimiter(ev.Runes[0]) {
		return
	}

	snapshot := e.rules.Snapshot()
	m, ok := matchExpansion(e.buffer.String(), ev.Runes[0], snapshot)
	if !ok {
		return
	}

	e.sink.Logf("engine: matched rule %q", m.Rule.Trigger)
	e.buffer.Reset()
	e.exec.Inject(m.Backspaces, m.Rule.Replacement)
}

// InjectText types text directly, bypassing match detection.
func (e *Engine) InjectText(text string) {
	e.exec.InjectText(text)
}

// Pause sets one pause flag and notifies the status surface.
func (e *Engine) Pause(byUser bool) {
	e.state.PauseExpansions(byUser)
	if byUser {
		e.sink.Logf("engine: expansions paused by user")
	} else {
		e.sink.Logf("engine: expansions paused by secure input detection")
	}
	e.notifier.PauseStateChanged(true, byUser)
}

// Resume clears one pause flag and notifies the status surface. Clearing
// one flag never affects the other.
func (e *Engine) Resume(byUser bool) {
	e.state.ResumeExpansions(byUser)
	if byUser {
		e.sink.Logf("engine: expansions resumed by user")
	} else {
		e.sink.Logf("engine: expansions resumed after secure input ended")
	}
	e.notifier.PauseStateChanged(false, byUser)
}

// TogglePause flips the user pause flag and returns the new value.
func (e *Engine) TogglePause() bool {
	if e.state.PausedByUser() {
		e.Resume(true)
		return false
	}
	e.Pause(true)
	return true
}

// SetOptions updates the verbose and dry-run flags; nil leaves a flag as-is.
func (e *Engine) SetOptions(verbose, dryRun *bool) {
	if verbose != nil {
		e.state.SetVerbose(*verbose)
	}
	if dryRun != nil {
		e.state.SetDryRun(*dryRun)
	}
	e.sink.Logf("engine: options verbose=%v dry_run=%v", e.state.Verbose(), e.state.DryRun())
}
