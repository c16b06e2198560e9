// Package engine implements the text-expansion hot path: shared engine
// state, the rolling keystroke buffer, trigger matching, and the composition
// of the keyboard interception source with the injection executor.
package engine

import (
	"sync/atomic"
	"time"
)

// PauseReason classifies why expansion is paused.
type PauseReason string

const (
	PauseNotPaused     PauseReason = "not-paused"
	PauseUserRequested PauseReason = "user-requested"
	PauseSecureInput   PauseReason = "secure-input"
	PauseBoth          PauseReason = "both"
)

// PauseStateInfo is the pause state reported to the control surface.
// CanResume is true only for user-initiated pauses; a secure-input pause is
// cleared by the secure-input detector, never manually.
type PauseStateInfo struct {
	IsPaused            bool   `json:"is_paused"`
	PausedByUser        bool   `json:"paused_by_user"`
	PausedBySecureInput bool   `json:"paused_by_secure_input"`
	PauseTimestamp      string `json:"pause_timestamp,omitempty"`
	CanResume           bool   `json:"can_resume"`
}

// State holds the engine's shared flags and counters. All fields are
// independently atomic; the derived "is paused" predicate tolerates a stale
// read, which at worst delays a single keystroke's classification.
//
// State is constructed explicitly and passed to every component; there is no
// process-wide singleton, so tests get a fresh instance per run.
type State struct {
	running             atomic.Bool
	verbose             atomic.Bool
	dryRun              atomic.Bool
	injecting           atomic.Bool
	eventCount          atomic.Uint64
	pausedByUser        atomic.Bool
	pausedBySecureInput atomic.Bool
}

// NewState returns engine state with defaults: stopped, quiet, dry-run on.
func NewState() *State {
	s := &State{}
	s.dryRun.Store(true)
	return s
}

func (s *State) Running() bool         { return s.running.Load() }
func (s *State) SetRunning(v bool)     { s.running.Store(v) }
func (s *State) Verbose() bool         { return s.verbose.Load() }
func (s *State) SetVerbose(v bool)     { s.verbose.Store(v) }
func (s *State) DryRun() bool          { return s.dryRun.Load() }
func (s *State) SetDryRun(v bool)      { s.dryRun.Store(v) }
func (s *State) Injecting() bool       { return s.injecting.Load() }
func (s *State) SetInjecting(v bool)   { s.injecting.Store(v) }
func (s *State) EventCount() uint64    { return s.eventCount.Load() }
func (s *State) IncEventCount() uint64 { return s.eventCount.Add(1) }

// PauseExpansions sets one of the two independent pause flags.
func (s *State) PauseExpansions(byUser bool) {
	if byUser {
		s.pausedByUser.Store(true)
	} else {
		s.pausedBySecureInput.Store(true)
	}
}

// ResumeExpansions clears one of the two pause flags; the other is untouched.
func (s *State) ResumeExpansions(byUser bool) {
	if byUser {
		s.pausedByUser.Store(false)
	} else {
		s.pausedBySecureInput.Store(false)
	}
}

// IsPaused reports whether either pause flag is set.
func (s *State) IsPaused() bool {
	return s.pausedByUser.Load() || s.pausedBySecureInput.Load()
}

// PausedByUser reports the user-requested pause flag.
func (s *State) PausedByUser() bool { return s.pausedByUser.Load() }

// PausedBySecureInput reports the secure-input pause flag.
func (s *State) PausedBySecureInput() bool { return s.pausedBySecureInput.Load() }

// Reason derives the four-state pause reason at query time.
func (s *State) Reason() PauseReason {
	user := s.pausedByUser.Load()
	secure := s.pausedBySecureInput.Load()
	switch {
	case user && secure:
		return PauseBoth
	case user:
		return PauseUserRequested
	case secure:
		return PauseSecureInput
	default:
		return PauseNotPaused
	}
}

// PauseInfo reports the pause state for the control surface. The timestamp
// is captured at query time when paused.
func (s *State) PauseInfo() PauseStateInfo {
	user := s.pausedByUser.Load()
	secure := s.pausedBySecureInput.Load()
	info := PauseStateInfo{
		IsPaused:            user || secure,
		PausedByUser:        user,
		PausedBySecureInput: secure,
		CanResume:           user,
	}
	if info.IsPaused {
		info.PauseTimestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return info
}
