package tap

import (
	"context"
	"testing"
)

func TestSimulatedDeliversEvents(t *testing.T) {
	s := NewSimulated(ScopeSession)

	var got []Event
	if err := s.Start(context.Background(), func(ev Event) {
		got = append(got, ev)
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.PressString("hi")
	s.PressBackspace()
	s.Press(' ')

	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %d", len(got))
	}
	if string(got[0].Runes) != "h" || string(got[1].Runes) != "i" {
		t.Errorf("unexpected rune events: %v", got)
	}
	if !got[2].Backspace {
		t.Error("expected backspace event")
	}
	if string(got[3].Runes) != " " {
		t.Errorf("expected space, got %q", string(got[3].Runes))
	}
}

func TestSimulatedStartTwice(t *testing.T) {
	s := NewSimulated(ScopeHID)

	if err := s.Start(context.Background(), func(Event) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background(), func(Event) {}); err != ErrAlreadyRunning {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
	if s.Installs() != 1 {
		t.Errorf("expected 1 install, got %d", s.Installs())
	}
}

func TestSimulatedStopSilences(t *testing.T) {
	s := NewSimulated(ScopeSession)

	count := 0
	_ = s.Start(context.Background(), func(Event) { count++ })
	s.Press('a')
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	s.Press('b')

	if count != 1 {
		t.Errorf("expected 1 delivered event, got %d", count)
	}
}

func TestSimulatedMultiRuneEvent(t *testing.T) {
	s := NewSimulated(ScopeSession)

	var got Event
	_ = s.Start(context.Background(), func(ev Event) { got = ev })
	s.PressRunes([]rune{'´', 'e'})

	if string(got.Runes) != "´e" {
		t.Errorf("expected composed sequence, got %q", string(got.Runes))
	}
}

func TestScopeString(t *testing.T) {
	if ScopeSession.String() != "session" {
		t.Errorf("got %q", ScopeSession.String())
	}
	if ScopeHID.String() != "hid" {
		t.Errorf("got %q", ScopeHID.String())
	}
	if Scope(9).String() != "unknown" {
		t.Errorf("got %q", Scope(9).String())
	}
}
