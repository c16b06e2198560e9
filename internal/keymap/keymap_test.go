package keymap

import "testing"

func TestLookupLetters(t *testing.T) {
	r, ok := Lookup(30, false) // KEY_A
	if !ok || r != 'a' {
		t.Errorf("expected 'a', got %q ok=%v", r, ok)
	}
	r, ok = Lookup(30, true)
	if !ok || r != 'A' {
		t.Errorf("expected 'A', got %q ok=%v", r, ok)
	}
}

func TestLookupShiftedSymbols(t *testing.T) {
	r, ok := Lookup(39, false) // KEY_SEMICOLON
	if !ok || r != ';' {
		t.Errorf("expected ';', got %q ok=%v", r, ok)
	}
	r, ok = Lookup(39, true)
	if !ok || r != ':' {
		t.Errorf("expected ':', got %q ok=%v", r, ok)
	}
}

func TestLookupDelimiters(t *testing.T) {
	cases := []struct {
		code uint16
		want rune
	}{
		{KeySpace, ' '},
		{KeyEnter, '\n'},
		{KeyTab, '\t'},
	}
	for _, tc := range cases {
		r, ok := Lookup(tc.code, false)
		if !ok || r != tc.want {
			t.Errorf("code %d: expected %q, got %q ok=%v", tc.code, tc.want, r, ok)
		}
	}
}

func TestLookupNonCharacter(t *testing.T) {
	if _, ok := Lookup(29, false); ok { // KEY_LEFTCTRL
		t.Error("control key should not decode to a rune")
	}
	if _, ok := Lookup(KeyLeftShift, false); ok {
		t.Error("shift should not decode to a rune")
	}
}

func TestReverseRoundTrip(t *testing.T) {
	for _, r := range "abcxyz019;'/ \t\n-=[]" {
		code, shift, ok := Reverse(r)
		if !ok {
			t.Errorf("Reverse(%q) not found", r)
			continue
		}
		got, ok := Lookup(code, shift)
		if !ok || got != r {
			t.Errorf("round trip %q: got %q ok=%v", r, got, ok)
		}
	}
}

func TestReverseShifted(t *testing.T) {
	for _, r := range "AZ!@:\"{}?" {
		code, shift, ok := Reverse(r)
		if !ok || !shift {
			t.Errorf("Reverse(%q): expected shifted mapping, got code=%d shift=%v ok=%v", r, code, shift, ok)
			continue
		}
		got, _ := Lookup(code, true)
		if got != r {
			t.Errorf("round trip %q: got %q", r, got)
		}
	}
}

func TestReverseUntypeable(t *testing.T) {
	if _, _, ok := Reverse('é'); ok {
		t.Error("expected no mapping for 'é' in US layout")
	}
}

func TestIsShift(t *testing.T) {
	if !IsShift(KeyLeftShift) || !IsShift(KeyRightShift) {
		t.Error("shift codes not recognized")
	}
	if IsShift(KeySpace) {
		t.Error("space misclassified as shift")
	}
}
