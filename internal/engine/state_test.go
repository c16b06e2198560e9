package engine

import "testing"

func TestNewStateDefaults(t *testing.T) {
	s := NewState()

	if s.Running() {
		t.Error("new state should not be running")
	}
	if s.Verbose() {
		t.Error("new state should not be verbose")
	}
	if !s.DryRun() {
		t.Error("dry-run must default to on")
	}
	if s.Injecting() {
		t.Error("new state should not be injecting")
	}
	if s.EventCount() != 0 {
		t.Error("event count should start at zero")
	}
	if s.IsPaused() {
		t.Error("new state should not be paused")
	}
}

func TestPauseFlagsIndependent(t *testing.T) {
	s := NewState()

	s.PauseExpansions(true)
	s.PauseExpansions(false)
	if !s.PausedByUser() || !s.PausedBySecureInput() {
		t.Fatal("both pause flags should be set")
	}

	// Clearing the user flag leaves the secure-input flag untouched.
	s.ResumeExpansions(true)
	if s.PausedByUser() {
		t.Error("user pause should be cleared")
	}
	if !s.PausedBySecureInput() {
		t.Error("secure-input pause should survive a user resume")
	}
	if !s.IsPaused() {
		t.Error("still paused while secure-input flag is set")
	}

	s.ResumeExpansions(false)
	if s.IsPaused() {
		t.Error("all pause flags cleared, should not be paused")
	}
}

func TestPauseReason(t *testing.T) {
	cases := []struct {
		user, secure bool
		want         PauseReason
	}{
		{false, false, PauseNotPaused},
		{true, false, PauseUserRequested},
		{false, true, PauseSecureInput},
		{true, true, PauseBoth},
	}
	for _, tc := range cases {
		s := NewState()
		if tc.user {
			s.PauseExpansions(true)
		}
		if tc.secure {
			s.PauseExpansions(false)
		}
		if got := s.Reason(); got != tc.want {
			t.Errorf("user=%v secure=%v: reason = %q, want %q", tc.user, tc.secure, got, tc.want)
		}
	}
}

func TestPauseInfoCanResume(t *testing.T) {
	s := NewState()

	info := s.PauseInfo()
	if info.IsPaused || info.CanResume || info.PauseTimestamp != "" {
		t.Errorf("unpaused info: %+v", info)
	}

	s.PauseExpansions(false)
	info = s.PauseInfo()
	if !info.IsPaused {
		t.Error("should be paused")
	}
	if info.CanResume {
		t.Error("secure-input pause must not be user-resumable")
	}
	if info.PauseTimestamp == "" {
		t.Error("paused info should carry a timestamp")
	}

	s.PauseExpansions(true)
	info = s.PauseInfo()
	if !info.CanResume {
		t.Error("user pause is resumable")
	}
}

func TestEventCount(t *testing.T) {
	s := NewState()
	for i := 0; i < 5; i++ {
		s.IncEventCount()
	}
	if got := s.EventCount(); got != 5 {
		t.Errorf("event count = %d, want 5", got)
	}
}
