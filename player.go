package lyra

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// TrackIDKey is the metadata key holding the current track's object
// path, used by SetPosition.
const TrackIDKey = "mpris:trackid"

// Player controls a single MPRIS media player. It holds no state
// beyond the player's identity; every method maps onto one remote
// call against the player's well-known bus name.
type Player struct {
	// Name is the player's short name, without the MPRIS prefix.
	Name string

	bus Bus
	obj dbus.BusObject
}

// TryNew validates that name refers to a live MPRIS player and returns
// a handle bound to it. The validation happens once, here; later calls
// do not re-check it.
func TryNew(ctx context.Context, name string, bus Bus) (*Player, error) {
	valid, validateErr := validate(ctx, name, bus)
	if validateErr != nil {
		return nil, fmt.Errorf("lyra: validate %q: %w", name, validateErr)
	}
	if !valid {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlayer, name)
	}
	return &Player{
		Name: name,
		bus:  bus,
		obj:  bus.Object(BusName(name), ObjectPath),
	}, nil
}

// call issues one method call on the player interface and waits for
// the reply.
func (p *Player) call(ctx context.Context, iface string, method string, args ...interface{}) error {
	busCall := p.obj.CallWithContext(ctx, iface+"."+method, 0, args...)
	if busCall.Err != nil {
		return fmt.Errorf("lyra: %s: %w", method, busCall.Err)
	}
	return nil
}

// -- PLAYBACK CONTROLS

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "Next")
}

// Previous skips to the previous track.
func (p *Player) Previous(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "Previous")
}

// Pause pauses the current track.
func (p *Player) Pause(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "Pause")
}

// Play starts or resumes the current track.
func (p *Player) Play(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "Play")
}

// PlayPause toggles between playing and paused.
func (p *Player) PlayPause(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "PlayPause")
}

// Stop stops playback.
func (p *Player) Stop(ctx context.Context) error {
	return p.call(ctx, PlayerInterface, "Stop")
}

// -- POSITION

// Seek moves the playback position forward by offset (or backward for
// a negative offset). The offset is sent as signed microseconds.
func (p *Player) Seek(ctx context.Context, offset time.Duration) error {
	return p.call(ctx, PlayerInterface, "Seek", offset.Microseconds())
}

// SeekReverse moves the playback position backward by offset. It is
// wire-equivalent to Seek with the negated offset.
func (p *Player) SeekReverse(ctx context.Context, offset time.Duration) error {
	return p.Seek(ctx, -offset)
}

// SetTrackPosition sets the absolute playback position in microseconds
// for the given track. Players ignore the call if trackID is not the
// current track.
func (p *Player) SetTrackPosition(ctx context.Context, trackID dbus.ObjectPath, position int64) error {
	return p.call(ctx, PlayerInterface, "SetPosition", trackID, position)
}

// SetPosition sets the absolute playback position in microseconds on
// the current track. It reads the track id from the metadata
// dictionary first, so it issues two remote calls; use
// SetTrackPosition when the track id is already known.
func (p *Player) SetPosition(ctx context.Context, position int64) error {
	trackVariant, metaErr := p.GetMetadataProperty(ctx, TrackIDKey)
	if metaErr != nil {
		return metaErr
	}
	var trackID dbus.ObjectPath
	if storeErr := trackVariant.Store(&trackID); storeErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrTypeMismatch, TrackIDKey, storeErr)
	}
	return p.SetTrackPosition(ctx, trackID, position)
}

// OpenURI asks the player to load and optionally play the given URI.
func (p *Player) OpenURI(ctx context.Context, uri string) error {
	return p.call(ctx, PlayerInterface, "OpenUri", uri)
}

// -- PROPERTIES

// GetProperty reads a player-interface property by name and returns
// its raw variant value.
func (p *Player) GetProperty(ctx context.Context, name string) (dbus.Variant, error) {
	return p.getProperty(ctx, PlayerInterface, name)
}

// SetProperty writes a player-interface property by name. The value is
// wrapped into a variant for the wire.
func (p *Player) SetProperty(ctx context.Context, name string, value interface{}) error {
	return p.call(ctx, PropertiesInterface, "Set", PlayerInterface, name, dbus.MakeVariant(value))
}

func (p *Player) getProperty(ctx context.Context, iface string, name string) (dbus.Variant, error) {
	busCall := p.obj.CallWithContext(ctx, PropertiesInterface+".Get", 0, iface, name)
	if busCall.Err != nil {
		return dbus.Variant{}, fmt.Errorf("lyra: get %s: %w", name, busCall.Err)
	}
	var value dbus.Variant
	if storeErr := busCall.Store(&value); storeErr != nil {
		return dbus.Variant{}, fmt.Errorf("lyra: get %s: %w", name, storeErr)
	}
	return value, nil
}

// GetMetadata returns the player's full metadata dictionary.
func (p *Player) GetMetadata(ctx context.Context) (map[string]dbus.Variant, error) {
	metaVariant, propErr := p.GetProperty(ctx, "Metadata")
	if propErr != nil {
		return nil, propErr
	}
	var metadata map[string]dbus.Variant
	if storeErr := metaVariant.Store(&metadata); storeErr != nil {
		return nil, fmt.Errorf("%w: Metadata: %v", ErrTypeMismatch, storeErr)
	}
	return metadata, nil
}

// GetMetadataProperty returns one entry of the player's metadata
// dictionary, e.g. "xesam:title".
func (p *Player) GetMetadataProperty(ctx context.Context, key string) (dbus.Variant, error) {
	metadata, metaErr := p.GetMetadata(ctx)
	if metaErr != nil {
		return dbus.Variant{}, metaErr
	}
	value, exists := metadata[key]
	if !exists {
		return dbus.Variant{}, fmt.Errorf("%w: %q", ErrPropertyNotFound, key)
	}
	return value, nil
}

// storeProperty reads a property and stores it into a typed target.
func (p *Player) storeProperty(ctx context.Context, iface string, name string, target interface{}) error {
	value, propErr := p.getProperty(ctx, iface, name)
	if propErr != nil {
		return propErr
	}
	if storeErr := value.Store(target); storeErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrTypeMismatch, name, storeErr)
	}
	return nil
}

// GetPosition returns the playback position in microseconds.
func (p *Player) GetPosition(ctx context.Context) (int64, error) {
	var position int64
	if propErr := p.storeProperty(ctx, PlayerInterface, "Position", &position); propErr != nil {
		return 0, propErr
	}
	return position, nil
}

// GetVolume returns the player volume, 0.0 to 1.0.
func (p *Player) GetVolume(ctx context.Context) (float64, error) {
	var volume float64
	if propErr := p.storeProperty(ctx, PlayerInterface, "Volume", &volume); propErr != nil {
		return 0, propErr
	}
	return volume, nil
}

// SetVolume sets the player volume.
func (p *Player) SetVolume(ctx context.Context, volume float64) error {
	return p.SetProperty(ctx, "Volume", volume)
}

// GetRate returns the playback rate.
func (p *Player) GetRate(ctx context.Context) (float64, error) {
	var rate float64
	if propErr := p.storeProperty(ctx, PlayerInterface, "Rate", &rate); propErr != nil {
		return 0, propErr
	}
	return rate, nil
}

// SetRate sets the playback rate.
func (p *Player) SetRate(ctx context.Context, rate float64) error {
	return p.SetProperty(ctx, "Rate", rate)
}

// GetShuffle returns whether shuffle is enabled.
func (p *Player) GetShuffle(ctx context.Context) (bool, error) {
	var shuffle bool
	if propErr := p.storeProperty(ctx, PlayerInterface, "Shuffle", &shuffle); propErr != nil {
		return false, propErr
	}
	return shuffle, nil
}

// SetShuffle enables or disables shuffle.
func (p *Player) SetShuffle(ctx context.Context, shuffle bool) error {
	return p.SetProperty(ctx, "Shuffle", shuffle)
}

// GetPlaybackStatus returns the parsed playback status.
func (p *Player) GetPlaybackStatus(ctx context.Context) (PlaybackStatus, error) {
	var raw string
	if propErr := p.storeProperty(ctx, PlayerInterface, "PlaybackStatus", &raw); propErr != nil {
		return PlaybackStatusError, propErr
	}
	return ParsePlaybackStatus(raw)
}

// GetLoopStatus returns the parsed loop status.
func (p *Player) GetLoopStatus(ctx context.Context) (LoopStatus, error) {
	var raw string
	if propErr := p.storeProperty(ctx, PlayerInterface, "LoopStatus", &raw); propErr != nil {
		return LoopStatusError, propErr
	}
	return ParseLoopStatus(raw)
}

// SetLoopStatus sets the loop status.
func (p *Player) SetLoopStatus(ctx context.Context, status LoopStatus) error {
	return p.SetProperty(ctx, "LoopStatus", string(status))
}

// -- ROOT INTERFACE

// Raise asks the player to bring its user interface to the front.
func (p *Player) Raise(ctx context.Context) error {
	return p.call(ctx, BaseInterface, "Raise")
}

// Quit asks the player to exit.
func (p *Player) Quit(ctx context.Context) error {
	return p.call(ctx, BaseInterface, "Quit")
}

// GetIdentity returns the player's human-readable name.
func (p *Player) GetIdentity(ctx context.Context) (string, error) {
	var identity string
	if propErr := p.storeProperty(ctx, BaseInterface, "Identity", &identity); propErr != nil {
		return "", propErr
	}
	return identity, nil
}
