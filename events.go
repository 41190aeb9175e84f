package lyra

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Buffered per registration; the dispatch goroutine drains it.
const signalBufferSize = 5

// EventType selects which MPRIS signal an event callback listens for.
type EventType int

const (
	// PropertiesChanged fires whenever any player property changes.
	PropertiesChanged EventType = iota
	// Seeked fires whenever the playback position jumps outside
	// normal linear progression.
	Seeked
)

// Member returns the signal member name for the event type, or "" for
// an unknown value.
func (e EventType) Member() string {
	switch e {
	case PropertiesChanged:
		return "PropertiesChanged"
	case Seeked:
		return "Seeked"
	}
	return ""
}

// Callback handles one matched signal. Return true to keep receiving,
// false to end delivery for this registration.
type Callback func(*dbus.Signal) bool

// SignalConn is the slice of a bus connection the EventManager needs.
// *dbus.Conn satisfies it.
type SignalConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Registration is the handle for one active signal subscription.
type Registration struct {
	member  string
	path    dbus.ObjectPath
	options []dbus.MatchOption
	signals chan *dbus.Signal
	done    chan struct{}
	stop    sync.Once
}

// Member returns the signal member name this registration matches.
func (r *Registration) Member() string { return r.member }

// Path returns the object path this registration matches.
func (r *Registration) Path() dbus.ObjectPath { return r.path }

// matches filters the connection-wide signal stream down to this
// registration's member and path. Signal names arrive fully qualified
// ("org.mpris.MediaPlayer2.Player.Seeked"), so match on the suffix.
func (r *Registration) matches(sig *dbus.Signal) bool {
	return sig.Path == r.path && strings.HasSuffix(sig.Name, "."+r.member)
}

func (r *Registration) end() {
	r.stop.Do(func() { close(r.done) })
}

// EventManager registers signal-match filters for MPRIS events on a
// shared bus connection and forwards matching signals to callbacks.
// Registrations accumulate until ClearCallbacks removes them in bulk;
// there is no per-callback removal.
type EventManager struct {
	conn SignalConn

	mu            sync.Mutex
	registrations []*Registration
}

// NewEventManager creates an event manager with no registrations. The
// connection is borrowed, never closed.
func NewEventManager(conn SignalConn) *EventManager {
	return &EventManager{
		conn:          conn,
		registrations: []*Registration{},
	}
}

// AddCallback registers interest in one event type and forwards every
// matching signal to the callback. On success the registration is
// recorded for later bulk removal and returned to the caller.
func (m *EventManager) AddCallback(eventType EventType, callback Callback) (*Registration, error) {
	member := eventType.Member()
	if member == "" {
		return nil, fmt.Errorf("lyra: unknown event type %d", eventType)
	}
	options := []dbus.MatchOption{
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchMember(member),
	}
	if matchErr := m.conn.AddMatchSignal(options...); matchErr != nil {
		return nil, fmt.Errorf("lyra: add match for %s: %w", member, matchErr)
	}

	registration := &Registration{
		member:  member,
		path:    ObjectPath,
		options: options,
		signals: make(chan *dbus.Signal, signalBufferSize),
		done:    make(chan struct{}),
	}
	m.conn.Signal(registration.signals)
	go m.dispatch(registration, callback)

	m.mu.Lock()
	m.registrations = append(m.registrations, registration)
	m.mu.Unlock()
	return registration, nil
}

// dispatch feeds matched signals into the callback until the callback
// asks to stop or the registration is cleared. The connection delivers
// every matched signal on the bus to every registered channel, so each
// registration re-filters on its own member and path.
func (m *EventManager) dispatch(registration *Registration, callback Callback) {
	for {
		select {
		case sig, open := <-registration.signals:
			if !open {
				return
			}
			if sig == nil || !registration.matches(sig) {
				continue
			}
			if !callback(sig) {
				m.conn.RemoveSignal(registration.signals)
				return
			}
		case <-registration.done:
			return
		}
	}
}

// Count returns the number of recorded registrations.
func (m *EventManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

// ClearCallbacks removes every recorded registration from the
// connection. Removal continues past individual failures: every
// registration gets one removal attempt, entries removed successfully
// are dropped from the bookkeeping list, and the failures come back
// joined into one error. Entries whose removal failed stay recorded.
func (m *EventManager) ClearCallbacks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removalErrs []error
	remaining := make([]*Registration, 0, len(m.registrations))
	for _, registration := range m.registrations {
		registration.end()
		m.conn.RemoveSignal(registration.signals)
		if removeErr := m.conn.RemoveMatchSignal(registration.options...); removeErr != nil {
			removalErrs = append(removalErrs, fmt.Errorf("lyra: remove match for %s: %w", registration.member, removeErr))
			remaining = append(remaining, registration)
		}
	}
	m.registrations = remaining
	return errors.Join(removalErrs...)
}
