//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>

// postBackspace emits one backspace key-press (down+up). kVK_Delete = 51.
static void postBackspace(void) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, (CGKeyCode)51, true);
    CGEventRef up   = CGEventCreateKeyboardEvent(NULL, (CGKeyCode)51, false);
    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(down);
    CFRelease(up);
}

// postUnicode emits a key event carrying an arbitrary UTF-16 payload, which
// sidesteps layout-dependent keycode mapping entirely.
static void postUnicode(UniChar *chars, int len) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, (CGKeyCode)0, true);
    CGEventRef up   = CGEventCreateKeyboardEvent(NULL, (CGKeyCode)0, false);
    CGEventKeyboardSetUnicodeString(down, (UniCharCount)len, chars);
    CGEventKeyboardSetUnicodeString(up, (UniCharCount)len, chars);
    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(down);
    CFRelease(up);
}
*/
import "C"

import (
	"time"
	"unicode/utf16"
	"unsafe"
)

// keyGap paces synthetic events so slow receivers keep up.
const keyGap = time.Millisecond

type darwinInjector struct{}

func newPlatformInjector() Injector {
	return &darwinInjector{}
}

func (darwinInjector) Backspace(n int) error {
	for i := 0; i < n; i++ {
		C.postBackspace()
		time.Sleep(keyGap)
	}
	return nil
}

func (darwinInjector) TypeText(text string) error {
	for _, r := range text {
		units := utf16.Encode([]rune{r})
		C.postUnicode((*C.UniChar)(unsafe.Pointer(&units[0])), C.int(len(units)))
		time.Sleep(keyGap)
	}
	return nil
}

var _ Injector = (*darwinInjector)(nil)
