//go:build linux

package inject

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"expandd/internal/keymap"
)

// uinput ioctl requests and event framing, from linux/uinput.h and
// linux/input.h. The legacy uinput_user_dev setup path is used because it
// works on every kernel the daemon targets.
const (
	uiSetEvBit  = 0x40045564 // UI_SET_EVBIT
	uiSetKeyBit = 0x40045565 // UI_SET_KEYBIT
	uiDevCreate = 0x5501     // UI_DEV_CREATE

	evSyn     = 0
	evKey     = 1
	synReport = 0

	// sizeof(struct uinput_user_dev): name[80] + input_id + ff_effects_max
	// + 4 * absmax[64]
	userDevSize = 80 + 8 + 4 + 4*64*4

	inputEventSize = 24
)

// linuxInjector types through a virtual uinput keyboard. The device is
// created on first use and lives for the process lifetime.
type linuxInjector struct {
	once sync.Once
	f    *os.File
	err  error
}

func newPlatformInjector() Injector {
	return &linuxInjector{}
}

// setup creates the virtual keyboard device.
func (l *linuxInjector) setup() {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		l.err = fmt.Errorf("open /dev/uinput: %w", err)
		return
	}

	fd := f.Fd()
	if err := ioctlInt(fd, uiSetEvBit, evKey); err != nil {
		l.err = fmt.Errorf("enable key events: %w", err)
		f.Close()
		return
	}
	// Enable every key code the layout table can produce, plus shift and
	// backspace for the erase path.
	for code := 1; code < 128; code++ {
		if err := ioctlInt(fd, uiSetKeyBit, code); err != nil {
			l.err = fmt.Errorf("enable key %d: %w", code, err)
			f.Close()
			return
		}
	}

	dev := make([]byte, userDevSize)
	copy(dev, []byte("expandd virtual keyboard"))
	// input_id: bustype BUS_VIRTUAL (0x06), vendor/product/version arbitrary.
	binary.LittleEndian.PutUint16(dev[80:], 0x06)
	binary.LittleEndian.PutUint16(dev[82:], 0x1)
	binary.LittleEndian.PutUint16(dev[84:], 0x1)
	binary.LittleEndian.PutUint16(dev[86:], 0x1)

	if _, err := f.Write(dev); err != nil {
		l.err = fmt.Errorf("write device setup: %w", err)
		f.Close()
		return
	}
	if err := ioctlInt(fd, uiDevCreate, 0); err != nil {
		l.err = fmt.Errorf("create device: %w", err)
		f.Close()
		return
	}

	// Give the input subsystem a moment to register the new device.
	time.Sleep(100 * time.Millisecond)
	l.f = f
}

func ioctlInt(fd uintptr, req uint, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// emit writes one input_event. The kernel fills in the timestamp.
func (l *linuxInjector) emit(typ, code uint16, value int32) error {
	buf := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint16(buf[16:], typ)
	binary.LittleEndian.PutUint16(buf[18:], code)
	binary.LittleEndian.PutUint32(buf[20:], uint32(value))
	_, err := l.f.Write(buf)
	return err
}

// tapKey presses and releases a key code, with shift held if needed.
func (l *linuxInjector) tapKey(code uint16, shift bool) error {
	if shift {
		if err := l.emit(evKey, keymap.KeyLeftShift, 1); err != nil {
			return err
		}
	}
	if err := l.emit(evKey, code, 1); err != nil {
		return err
	}
	if err := l.emit(evKey, code, 0); err != nil {
		return err
	}
	if shift {
		if err := l.emit(evKey, keymap.KeyLeftShift, 0); err != nil {
			return err
		}
	}
	return l.emit(evSyn, synReport, 0)
}

func (l *linuxInjector) ready() error {
	l.once.Do(l.setup)
	return l.err
}

func (l *linuxInjector) Backspace(n int) error {
	if err := l.ready(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := l.tapKey(keymap.KeyBackspace, false); err != nil {
			return err
		}
	}
	return nil
}

func (l *linuxInjector) TypeText(text string) error {
	if err := l.ready(); err != nil {
		return err
	}
	for _, r := range text {
		code, shift, ok := keymap.Reverse(r)
		if !ok {
			// Untypeable in the fixed layout; skip rather than fail the
			// whole replacement.
			continue
		}
		if err := l.tapKey(code, shift); err != nil {
			return err
		}
	}
	return nil
}

var _ Injector = (*linuxInjector)(nil)
