//go:build darwin

package tap

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation

#include <ApplicationServices/ApplicationServices.h>
#include <pthread.h>
#include <unistd.h>

// Decoded key events are queued in a fixed ring written by the tap callback
// and drained by the Go poll loop. Single producer, single consumer.
#define EVT_RING_SIZE 256
#define EVT_MAX_CHARS 8

typedef struct {
    UniChar chars[EVT_MAX_CHARS];
    int     len;
    int     backspace;
} KeyEvent;

static KeyEvent eventRing[EVT_RING_SIZE];
static volatile int ringHead = 0; // written by callback
static volatile int ringTail = 0; // written by poller

// Run loop state
static CFRunLoopRef tapRunLoop = NULL;
static volatile int tapEnabled = 0;
static volatile int tapDisabledBySystem = 0;

static CFMachPortRef eventTap = NULL;
static CFRunLoopSourceRef runLoopSource = NULL;

static void stopEventTap(void);

static CGEventRef eventCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    (void)proxy;
    (void)refcon;

    // The system disables a tap whose callback is too slow; re-enable.
    if (type == kCGEventTapDisabledByUserInput || type == kCGEventTapDisabledByTimeout) {
        tapDisabledBySystem = 1;
        if (eventTap != NULL) {
            CGEventTapEnable(eventTap, true);
        }
        return event;
    }

    if (type != kCGEventKeyDown) {
        return event;
    }

    int next = (ringHead + 1) % EVT_RING_SIZE;
    if (next == ringTail) {
        // Ring full; drop rather than block key delivery.
        return event;
    }

    KeyEvent *ev = &eventRing[ringHead];
    UniCharCount actual = 0;
    CGEventKeyboardGetUnicodeString(event, EVT_MAX_CHARS, &actual, ev->chars);
    ev->len = (int)actual;
    ev->backspace = (actual == 1 && ev->chars[0] == 0x08) ? 1 : 0;

    ringHead = next;
    return event;
}

// drainEvent copies the oldest queued event into out. Returns 0 if empty.
static int drainEvent(KeyEvent *out) {
    if (ringTail == ringHead) {
        return 0;
    }
    *out = eventRing[ringTail];
    ringTail = (ringTail + 1) % EVT_RING_SIZE;
    return 1;
}

static void* runLoopThread(void* arg) {
    (void)arg;
    tapRunLoop = CFRunLoopGetCurrent();
    CFRunLoopAddSource(tapRunLoop, runLoopSource, kCFRunLoopCommonModes);
    CGEventTapEnable(eventTap, true);
    tapEnabled = 1;
    CFRunLoopRun();
    tapEnabled = 0;
    tapRunLoop = NULL;
    return NULL;
}

static pthread_t runLoopThreadHandle;
static volatile int threadRunning = 0;

// startEventTap installs a key-down tap at the given location:
// 0 = kCGSessionEventTap, 1 = kCGHIDEventTap.
static int startEventTap(int hidScope) {
    if (eventTap != NULL) {
        return 1; // Already running
    }

    ringHead = 0;
    ringTail = 0;

    CGEventMask eventMask = CGEventMaskBit(kCGEventKeyDown);
    CGEventTapLocation location = hidScope ? kCGHIDEventTap : kCGSessionEventTap;

    eventTap = CGEventTapCreate(
        location,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        eventMask,
        eventCallback,
        NULL
    );

    if (eventTap == NULL) {
        return -1; // Permission denied or not available
    }

    runLoopSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, eventTap, 0);
    if (runLoopSource == NULL) {
        CFRelease(eventTap);
        eventTap = NULL;
        return -2;
    }

    threadRunning = 1;
    if (pthread_create(&runLoopThreadHandle, NULL, runLoopThread, NULL) != 0) {
        CFRelease(runLoopSource);
        CFRelease(eventTap);
        runLoopSource = NULL;
        eventTap = NULL;
        threadRunning = 0;
        return -3;
    }

    for (int i = 0; i < 100 && !tapEnabled; i++) {
        usleep(10000); // 10ms
    }
    if (!tapEnabled) {
        stopEventTap();
        return -4;
    }

    return 0;
}

static void stopEventTap(void) {
    if (eventTap == NULL) {
        return;
    }

    CGEventTapEnable(eventTap, false);
    tapEnabled = 0;

    if (tapRunLoop != NULL) {
        CFRunLoopStop(tapRunLoop);
    }
    if (threadRunning) {
        pthread_join(runLoopThreadHandle, NULL);
        threadRunning = 0;
    }
    if (runLoopSource != NULL) {
        CFRelease(runLoopSource);
        runLoopSource = NULL;
    }
    if (eventTap != NULL) {
        CFRelease(eventTap);
        eventTap = NULL;
    }
    tapRunLoop = NULL;
}

static int isTapEnabled(void) {
    return tapEnabled;
}

static int wasTapDisabledBySystem(void) {
    int val = tapDisabledBySystem;
    tapDisabledBySystem = 0;
    return val;
}

static int checkAccessibility(void) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

static int promptAccessibility(void) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf16"
)

// darwinSource intercepts key-down events with a CGEventTap at the session
// or HID location. Decoded characters are queued C-side and drained by a
// poll loop, keeping the tap callback fast enough that the system does not
// disable it.
type darwinSource struct {
	scope Scope

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	pollDone chan struct{}
}

func newPlatformSource(scope Scope) Source {
	return &darwinSource{scope: scope}
}

// CheckAccessibility returns true if the process is trusted to observe
// system-wide keyboard input.
func CheckAccessibility() bool {
	return C.checkAccessibility() == 1
}

// PromptAccessibility checks trust and prompts the user if not granted.
func PromptAccessibility() bool {
	return C.promptAccessibility() == 1
}

func (d *darwinSource) Scope() Scope { return d.scope }

func (d *darwinSource) Available() (bool, string) {
	if C.checkAccessibility() == 1 {
		return true, "CGEventTap available (" + d.scope.String() + " scope)"
	}
	return false, "Accessibility permission required. Go to System Settings > Privacy & Security > Accessibility and add this application."
}

func (d *darwinSource) Start(ctx context.Context, fn Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}

	hid := C.int(0)
	if d.scope == ScopeHID {
		hid = 1
	}
	switch C.startEventTap(hid) {
	case 1:
		return ErrAlreadyRunning
	case -1:
		return ErrPermissionDenied
	case -2:
		return errors.New("failed to create run loop source")
	case -3:
		return errors.New("failed to create run loop thread")
	case -4:
		return errors.New("timeout waiting for event tap to start")
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.pollDone = make(chan struct{})
	d.running = true

	go d.pollLoop(ctx, fn)
	return nil
}

// pollLoop drains the C-side event ring and delivers decoded events.
func (d *darwinSource) pollLoop(ctx context.Context, fn Callback) {
	defer close(d.pollDone)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	healthTicker := time.NewTicker(time.Second)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-healthTicker.C:
			// The C callback re-enables a system-disabled tap itself;
			// if it stayed off the listener is gone for good.
			C.wasTapDisabledBySystem()
			if C.isTapEnabled() != 1 {
				go d.Stop()
				return
			}

		case <-ticker.C:
			var ev C.KeyEvent
			for C.drainEvent(&ev) == 1 {
				fn(decodeKeyEvent(&ev))
			}
		}
	}
}

func decodeKeyEvent(ev *C.KeyEvent) Event {
	if ev.backspace == 1 {
		return Event{Backspace: true}
	}
	n := int(ev.len)
	if n > MaxEventRunes {
		n = MaxEventRunes
	}
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = uint16(ev.chars[i])
	}
	return Event{Runes: utf16.Decode(units)}
}

func (d *darwinSource) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	d.running = false

	if d.cancel != nil {
		d.cancel()
	}
	if d.pollDone != nil {
		<-d.pollDone
	}
	C.stopEventTap()
	return nil
}

var _ Source = (*darwinSource)(nil)
