//go:build !linux

package notify

// The tray/notification surface ships separately on non-Linux platforms;
// the daemon itself has nothing to post to.
func newPlatformNotifier() Notifier {
	return Nop{}
}
