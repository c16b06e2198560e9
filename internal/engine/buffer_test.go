package engine

import (
	"strings"
	"testing"
)

func TestBufferAppend(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]rune("hello"))
	if got := b.String(); got != "hello" {
		t.Errorf("buffer = %q, want %q", got, "hello")
	}
	if b.Len() != 5 {
		t.Errorf("len = %d, want 5", b.Len())
	}
}

func TestBufferDropsOldestOverCap(t *testing.T) {
	b := NewBuffer(4)
	b.Append([]rune("abcdef"))
	if got := b.String(); got != "cdef" {
		t.Errorf("buffer = %q, want %q", got, "cdef")
	}

	b.Append([]rune{'g'})
	if got := b.String(); got != "defg" {
		t.Errorf("buffer = %q, want %q", got, "defg")
	}
}

func TestBufferDefaultCap(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]rune(strings.Repeat("x", DefaultBufferCap+10)))
	if b.Len() != DefaultBufferCap {
		t.Errorf("len = %d, want %d", b.Len(), DefaultBufferCap)
	}
}

func TestBufferBackspace(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]rune("héllo"))
	b.Backspace()
	b.Backspace()
	if got := b.String(); got != "hél" {
		t.Errorf("buffer = %q, want %q", got, "hél")
	}

	// Backspacing an empty buffer is a no-op.
	b.Reset()
	b.Backspace()
	if b.Len() != 0 {
		t.Errorf("len = %d, want 0", b.Len())
	}
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]rune("abc"))
	b.Reset()
	if b.Len() != 0 || b.String() != "" {
		t.Errorf("reset buffer = %q", b.String())
	}
}
