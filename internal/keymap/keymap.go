// Package keymap maps Linux evdev key codes to and from runes for a US
// keyboard layout. The tap's decode path uses Lookup; the uinput injection
// path uses Reverse. Codes match include/uapi/linux/input-event-codes.h.
//
// The table is deliberately a fixed US layout: layout-aware decoding would
// need an X11/Wayland binding, and a wrong-layout decode degrades to a
// missed match, never a bad injection of the trigger itself.
package keymap

// Evdev key codes used by the tap and injector.
const (
	KeyBackspace  uint16 = 14
	KeyTab        uint16 = 15
	KeyEnter      uint16 = 28
	KeyLeftShift  uint16 = 42
	KeyRightShift uint16 = 54
	KeySpace      uint16 = 57
)

// base maps key codes to unshifted runes.
var base = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5',
	7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	12: '-', 13: '=',
	15: '\t',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't',
	21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	26: '[', 27: ']',
	28: '\n',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g',
	35: 'h', 36: 'j', 37: 'k', 38: 'l',
	39: ';', 40: '\'', 41: '`',
	43: '\\',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b',
	49: 'n', 50: 'm',
	51: ',', 52: '.', 53: '/',
	57: ' ',
}

// shifted maps key codes to shifted runes where they differ from base.
var shifted = map[uint16]rune{
	2: '!', 3: '@', 4: '#', 5: '$', 6: '%',
	7: '^', 8: '&', 9: '*', 10: '(', 11: ')',
	12: '_', 13: '+',
	26: '{', 27: '}',
	39: ':', 40: '"', 41: '~',
	43: '|',
	51: '<', 52: '>', 53: '?',
}

// Lookup returns the rune produced by a key code under the given shift
// state, or false if the code does not produce a character.
func Lookup(code uint16, shift bool) (rune, bool) {
	if shift {
		if r, ok := shifted[code]; ok {
			return r, true
		}
		if r, ok := base[code]; ok {
			if r >= 'a' && r <= 'z' {
				return r - 'a' + 'A', true
			}
			return r, true
		}
		return 0, false
	}
	r, ok := base[code]
	return r, ok
}

// Reverse returns the key code and shift state that produce r, or false if
// the rune is not typeable in this layout.
func Reverse(r rune) (code uint16, shift bool, ok bool) {
	if r >= 'A' && r <= 'Z' {
		r = r - 'A' + 'a'
		shift = true
	}
	for c, br := range base {
		if br == r {
			return c, shift, true
		}
	}
	if shift {
		// Uppercase letter not in base; nothing else shifts this way.
		return 0, false, false
	}
	for c, sr := range shifted {
		if sr == r {
			return c, true, true
		}
	}
	return 0, false, false
}

// IsShift reports whether the key code is a shift modifier.
func IsShift(code uint16) bool {
	return code == KeyLeftShift || code == KeyRightShift
}
