//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

// dbusNotifier posts desktop notifications over the session bus using
// org.freedesktop.Notifications. Failures are swallowed: a missing session
// bus must never affect expansion.
type dbusNotifier struct {
	conn *dbus.Conn
}

func newPlatformNotifier() Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}
	}
	return &dbusNotifier{conn: conn}
}

func (d *dbusNotifier) notify(summary, body string) {
	obj := d.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	// Fire-and-forget: best-effort delivery, no acknowledgment.
	go obj.Call("org.freedesktop.Notifications.Notify", 0,
		"expandd",                 // app_name
		uint32(0),                 // replaces_id
		"input-keyboard",          // app_icon
		summary,                   // summary
		body,                      // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(3000),               // expire_timeout ms
	)
}

func (d *dbusNotifier) PauseStateChanged(paused, byUser bool) {
	who := "secure input"
	if byUser {
		who = "user"
	}
	if paused {
		d.notify("Expansions paused", "Paused by "+who)
	} else {
		d.notify("Expansions resumed", "Resumed by "+who)
	}
}

func (d *dbusNotifier) IconStateChanged(state IconState) {
	d.notify("Expansion status: "+string(state), "")
}

func (d *dbusNotifier) EngineLifecycle(event LifecycleEvent, detail string) {
	switch event {
	case LifecycleStarted:
		d.notify("Expansion engine started", detail)
	case LifecycleStopped:
		d.notify("Expansion engine stopped", detail)
	case LifecycleDegraded:
		d.notify("Expansion engine degraded", detail)
	}
}

var _ Notifier = (*dbusNotifier)(nil)
