package lyra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method string
	args   []interface{}
}

// fakeBusObject records every call and replies from canned bodies.
type fakeBusObject struct {
	dest    string
	path    dbus.ObjectPath
	calls   []recordedCall
	replies map[string][]interface{}
	errs    map[string]error
}

func newFakeBusObject(dest string, path dbus.ObjectPath) *fakeBusObject {
	return &fakeBusObject{
		dest:    dest,
		path:    path,
		replies: map[string][]interface{}{},
		errs:    map[string]error{},
	}
}

func (o *fakeBusObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	o.calls = append(o.calls, recordedCall{method: method, args: args})
	if callErr, failing := o.errs[method]; failing {
		return &dbus.Call{Err: callErr}
	}
	return &dbus.Call{Body: o.replies[method]}
}

func (o *fakeBusObject) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	return o.CallWithContext(context.Background(), method, flags, args...)
}

func (o *fakeBusObject) Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeBusObject) GoWithContext(ctx context.Context, method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeBusObject) AddMatchSignal(iface, member string, options ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeBusObject) RemoveMatchSignal(iface, member string, options ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeBusObject) GetProperty(p string) (dbus.Variant, error) {
	return dbus.Variant{}, nil
}

func (o *fakeBusObject) StoreProperty(p string, value interface{}) error { return nil }
func (o *fakeBusObject) SetProperty(p string, v interface{}) error       { return nil }
func (o *fakeBusObject) Destination() string                             { return o.dest }
func (o *fakeBusObject) Path() dbus.ObjectPath                           { return o.path }

// fakeBus satisfies Bus and hands out fake objects per destination.
type fakeBus struct {
	names   []string
	busObj  *fakeBusObject
	objects map[string]*fakeBusObject
}

func newFakeBus(names ...string) *fakeBus {
	busObj := newFakeBusObject("org.freedesktop.DBus", "/org/freedesktop/DBus")
	busObj.replies["org.freedesktop.DBus.ListNames"] = []interface{}{names}
	return &fakeBus{
		names:   names,
		busObj:  busObj,
		objects: map[string]*fakeBusObject{},
	}
}

func (b *fakeBus) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	if existing, found := b.objects[dest]; found {
		return existing
	}
	obj := newFakeBusObject(dest, path)
	b.objects[dest] = obj
	return obj
}

func (b *fakeBus) BusObject() dbus.BusObject { return b.busObj }

func (b *fakeBus) playerObject(name string) *fakeBusObject {
	return b.objects[BusName(name)]
}

func newTestPlayer(t *testing.T, bus *fakeBus, name string) *Player {
	t.Helper()
	player, newErr := TryNew(context.Background(), name, bus)
	require.NoError(t, newErr)
	return player
}

func TestTryNewInvalidPlayer(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")

	player, newErr := TryNew(context.Background(), "spotify", bus)
	assert.Nil(t, player)
	assert.ErrorIs(t, newErr, ErrInvalidPlayer)
	// Validation failed before any call could reach a player object.
	assert.Empty(t, bus.objects)
}

func TestTryNewValidPlayer(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc", "org.freedesktop.Notifications")

	player := newTestPlayer(t, bus, "vlc")
	assert.Equal(t, "vlc", player.Name)
	assert.Equal(t, "org.mpris.MediaPlayer2.vlc", player.obj.Destination())
	assert.Equal(t, ObjectPath, player.obj.Path())
}

func TestTryNewValidationFailure(t *testing.T) {
	bus := newFakeBus()
	bus.busObj.errs["org.freedesktop.DBus.ListNames"] = errors.New("bus gone")

	_, newErr := TryNew(context.Background(), "vlc", bus)
	require.Error(t, newErr)
	assert.NotErrorIs(t, newErr, ErrInvalidPlayer)
}

func TestPlaybackControlsIssueOneCall(t *testing.T) {
	controls := []struct {
		name   string
		invoke func(*Player, context.Context) error
	}{
		{"Next", (*Player).Next},
		{"Previous", (*Player).Previous},
		{"Pause", (*Player).Pause},
		{"Play", (*Player).Play},
		{"PlayPause", (*Player).PlayPause},
		{"Stop", (*Player).Stop},
	}
	for _, control := range controls {
		t.Run(control.name, func(t *testing.T) {
			bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
			player := newTestPlayer(t, bus, "vlc")

			require.NoError(t, control.invoke(player, context.Background()))

			obj := bus.playerObject("vlc")
			require.Len(t, obj.calls, 1)
			assert.Equal(t, PlayerInterface+"."+control.name, obj.calls[0].method)
			assert.Empty(t, obj.calls[0].args)
		})
	}
}

func TestPlaybackControlErrorPropagates(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	transportErr := errors.New("access denied")
	bus.playerObject("vlc").errs[PlayerInterface+".Next"] = transportErr

	nextErr := player.Next(context.Background())
	assert.ErrorIs(t, nextErr, transportErr)
}

func TestSeekSendsMicroseconds(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")

	require.NoError(t, player.Seek(context.Background(), 2*time.Second))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, PlayerInterface+".Seek", obj.calls[0].method)
	assert.Equal(t, []interface{}{int64(2000000)}, obj.calls[0].args)
}

func TestSeekReverseNegatesOffset(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")

	require.NoError(t, player.SeekReverse(context.Background(), 2*time.Second))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, []interface{}{int64(-2000000)}, obj.calls[0].args)
}

func TestSetTrackPosition(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	trackID := dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/7")

	require.NoError(t, player.SetTrackPosition(context.Background(), trackID, 150000))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, PlayerInterface+".SetPosition", obj.calls[0].method)
	assert.Equal(t, []interface{}{trackID, int64(150000)}, obj.calls[0].args)
}

func TestSetPositionResolvesTrackID(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	trackID := dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/7")
	obj := bus.playerObject("vlc")
	obj.replies[PropertiesInterface+".Get"] = []interface{}{
		dbus.MakeVariant(map[string]dbus.Variant{
			TrackIDKey: dbus.MakeVariant(trackID),
		}),
	}

	require.NoError(t, player.SetPosition(context.Background(), 150000))

	require.Len(t, obj.calls, 2)
	assert.Equal(t, PropertiesInterface+".Get", obj.calls[0].method)
	assert.Equal(t, PlayerInterface+".SetPosition", obj.calls[1].method)
	assert.Equal(t, []interface{}{trackID, int64(150000)}, obj.calls[1].args)
}

func TestOpenURI(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")

	require.NoError(t, player.OpenURI(context.Background(), "file:///tmp/track.ogg"))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, PlayerInterface+".OpenUri", obj.calls[0].method)
	assert.Equal(t, []interface{}{"file:///tmp/track.ogg"}, obj.calls[0].args)
}

func TestGetProperty(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	obj := bus.playerObject("vlc")
	obj.replies[PropertiesInterface+".Get"] = []interface{}{dbus.MakeVariant(0.5)}

	value, propErr := player.GetProperty(context.Background(), "Volume")
	require.NoError(t, propErr)
	assert.Equal(t, 0.5, value.Value())

	require.Len(t, obj.calls, 1)
	assert.Equal(t, []interface{}{PlayerInterface, "Volume"}, obj.calls[0].args)
}

func TestSetProperty(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")

	require.NoError(t, player.SetProperty(context.Background(), "Volume", 0.5))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, PropertiesInterface+".Set", obj.calls[0].method)
	assert.Equal(t,
		[]interface{}{PlayerInterface, "Volume", dbus.MakeVariant(0.5)},
		obj.calls[0].args,
	)
}

func TestGetMetadataProperty(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	obj := bus.playerObject("vlc")
	obj.replies[PropertiesInterface+".Get"] = []interface{}{
		dbus.MakeVariant(map[string]dbus.Variant{
			"xesam:title": dbus.MakeVariant("Echoes"),
		}),
	}

	title, metaErr := player.GetMetadataProperty(context.Background(), "xesam:title")
	require.NoError(t, metaErr)
	assert.Equal(t, "Echoes", title.Value())

	_, missingErr := player.GetMetadataProperty(context.Background(), "xesam:album")
	assert.ErrorIs(t, missingErr, ErrPropertyNotFound)
}

func TestGetPositionTypeMismatch(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	obj := bus.playerObject("vlc")
	obj.replies[PropertiesInterface+".Get"] = []interface{}{dbus.MakeVariant("not a position")}

	_, positionErr := player.GetPosition(context.Background())
	assert.ErrorIs(t, positionErr, ErrTypeMismatch)
}

func TestGetPlaybackStatus(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")
	obj := bus.playerObject("vlc")
	obj.replies[PropertiesInterface+".Get"] = []interface{}{dbus.MakeVariant("Playing")}

	status, statusErr := player.GetPlaybackStatus(context.Background())
	require.NoError(t, statusErr)
	assert.Equal(t, PlaybackStatusPlaying, status)
}

func TestQuitUsesRootInterface(t *testing.T) {
	bus := newFakeBus("org.mpris.MediaPlayer2.vlc")
	player := newTestPlayer(t, bus, "vlc")

	require.NoError(t, player.Quit(context.Background()))

	obj := bus.playerObject("vlc")
	require.Len(t, obj.calls, 1)
	assert.Equal(t, BaseInterface+".Quit", obj.calls[0].method)
}
