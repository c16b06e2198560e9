//go:build linux

package tap

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"expandd/internal/keymap"
)

// linuxSource reads key events from /dev/input/event* devices, one reader
// goroutine per keyboard so multi-keyboard setups are fully observed. The
// session scope is not distinguishable on the evdev layer, so both scopes
// read the same devices; the scope is kept for logging parity with darwin.
type linuxSource struct {
	scope Scope

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	devices []string
}

func newPlatformSource(scope Scope) Source {
	return &linuxSource{scope: scope}
}

func (l *linuxSource) Scope() Scope { return l.scope }

func (l *linuxSource) Available() (bool, string) {
	devices, err := findKeyboardDevices()
	if err != nil {
		return false, fmt.Sprintf("cannot find keyboard devices: %v", err)
	}
	if len(devices) == 0 {
		return false, "no keyboard devices found"
	}
	for _, dev := range devices {
		f, err := os.OpenFile(dev, os.O_RDONLY, 0)
		if err == nil {
			f.Close()
			return true, fmt.Sprintf("found keyboard device: %s", dev)
		}
	}
	return false, "cannot read keyboard devices (need to be in 'input' group or run as root)"
}

// findKeyboardDevices scans /proc/bus/input/devices for key-capable handlers.
func findKeyboardDevices() ([]string, error) {
	var devices []string

	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var currentHandler string
	isKeyboard := false

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "H: Handlers=") {
			parts := strings.Fields(line)
			for _, part := range parts {
				if strings.HasPrefix(part, "event") {
					currentHandler = "/dev/input/" + part
				}
			}
		}
		if strings.HasPrefix(line, "B: KEY=") && len(line) > 10 {
			isKeyboard = true
		}
		if line == "" {
			if isKeyboard && currentHandler != "" {
				devices = append(devices, currentHandler)
			}
			currentHandler = ""
			isKeyboard = false
		}
	}

	matches, _ := filepath.Glob("/dev/input/by-id/*-kbd")
	devices = append(devices, matches...)

	// A by-id symlink aliasing an already-found event node would open the
	// same device twice and double-deliver every keystroke.
	seen := make(map[string]bool, len(devices))
	var unique []string
	for _, dev := range devices {
		resolved, err := filepath.EvalSymlinks(dev)
		if err != nil {
			resolved = dev
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		unique = append(unique, resolved)
	}

	return unique, nil
}

func (l *linuxSource) Start(ctx context.Context, fn Callback) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return ErrAlreadyRunning
	}

	devices, err := findKeyboardDevices()
	if err != nil || len(devices) == 0 {
		return ErrNotAvailable
	}

	// Open every readable keyboard; one denied device does not fail the
	// install as long as another opens.
	var files []*os.File
	var lastErr error
	for _, dev := range devices {
		f, err := os.OpenFile(dev, os.O_RDONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		if os.IsPermission(lastErr) {
			return ErrPermissionDenied
		}
		return ErrNotAvailable
	}

	l.devices = devices
	ctx, l.cancel = context.WithCancel(ctx)
	l.running = true

	for _, f := range files {
		l.wg.Add(1)
		go l.readLoop(ctx, f, fn)
	}
	return nil
}

// evdev event framing: struct input_event on 64-bit is 24 bytes.
const (
	eventSize = 24
	evKey     = 1
	keyPress  = 1
	keyRepeat = 2
)

// readLoop decodes key-down events from one device. It polls with a timeout
// so context cancellation actually tears the listener down instead of
// leaving a goroutine parked in a blocking read. A read error ends this
// device's reader; the others keep running.
func (l *linuxSource) readLoop(ctx context.Context, f *os.File, fn Callback) {
	defer l.wg.Done()
	defer f.Close()

	fd := int(f.Fd())
	buf := make([]byte, eventSize*64)
	shift := false

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 200)
		if err != nil || n == 0 {
			continue
		}

		nr, err := f.Read(buf)
		if err != nil {
			return
		}

		for off := 0; off+eventSize <= nr; off += eventSize {
			typ := binary.LittleEndian.Uint16(buf[off+16 : off+18])
			code := binary.LittleEndian.Uint16(buf[off+18 : off+20])
			value := int32(binary.LittleEndian.Uint32(buf[off+20 : off+24]))

			if typ != evKey {
				continue
			}
			if keymap.IsShift(code) {
				shift = value == keyPress || value == keyRepeat
				continue
			}
			if value != keyPress && value != keyRepeat {
				continue
			}

			if code == keymap.KeyBackspace {
				fn(Event{Backspace: true})
				continue
			}
			if r, ok := keymap.Lookup(code, shift); ok {
				fn(Event{Runes: []rune{r}})
			}
		}
	}
}

func (l *linuxSource) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return nil
	}
	l.running = false

	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	return nil
}

var _ Source = (*linuxSource)(nil)
