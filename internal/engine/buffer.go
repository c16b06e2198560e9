package engine

import "sync"

// DefaultBufferCap is the default rolling-buffer capacity in runes.
const DefaultBufferCap = 128

// Buffer is the bounded rolling window of recent keystrokes. Characters are
// appended at the tail; when the cap is exceeded the oldest are dropped from
// the front. Backspace pops the tail. The buffer never persists across
// restarts and is cleared after any successful match.
type Buffer struct {
	mu    sync.Mutex
	runes []rune
	max   int
}

// NewBuffer creates a buffer capped at max runes. Non-positive max uses
// DefaultBufferCap.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferCap
	}
	return &Buffer{max: max}
}

// Append adds decoded runes, dropping from the front once over the cap.
func (b *Buffer) Append(rs []rune) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.runes = append(b.runes, rs...)
	if len(b.runes) > b.max {
		b.runes = b.runes[len(b.runes)-b.max:]
	}
}

// Backspace removes the last rune, if any.
func (b *Buffer) Backspace() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.runes); n > 0 {
		b.runes = b.runes[:n-1]
	}
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.runes)
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.runes)
}

// Reset clears the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runes = b.runes[:0]
}
