package lyra

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	// BaseInterface is the MPRIS root interface.
	BaseInterface = "org.mpris.MediaPlayer2"
	// PlayerInterface is the MPRIS player control interface.
	PlayerInterface = "org.mpris.MediaPlayer2.Player"
	// PropertiesInterface is the freedesktop properties interface.
	PropertiesInterface = "org.freedesktop.DBus.Properties"
	// BusNamePrefix prefixes every MPRIS well-known bus name.
	BusNamePrefix = "org.mpris.MediaPlayer2."
	// ObjectPath is the fixed MPRIS object path.
	ObjectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")
)

// Bus is the slice of a bus connection the Player needs. *dbus.Conn
// satisfies it.
type Bus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
}

// BusName returns the well-known bus name for a player short name,
// e.g. "spotify" -> "org.mpris.MediaPlayer2.spotify".
func BusName(name string) string {
	return BusNamePrefix + name
}

// validate reports whether the well-known name for the given player is
// currently owned on the bus.
func validate(ctx context.Context, name string, bus Bus) (bool, error) {
	call := bus.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0)
	if call.Err != nil {
		return false, call.Err
	}
	var names []string
	if storeErr := call.Store(&names); storeErr != nil {
		return false, storeErr
	}
	target := BusName(name)
	for _, ownedName := range names {
		if ownedName == target {
			return true, nil
		}
	}
	return false, nil
}
