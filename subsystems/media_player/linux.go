package media_player

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Artiqlate/lyra"
	"github.com/Artiqlate/lyra/comm"
	"github.com/Artiqlate/lyra/models"
	"github.com/Artiqlate/lyra/utils"
	"github.com/godbus/dbus/v5"
	"github.com/vmihailenco/msgpack/v5"
)

// Matches the fixed call timeout of the underlying proxy layer.
const callTimeout = 5 * time.Second

type LinuxMediaPlayerSubsystem struct {
	logf         func(string, ...interface{})
	bus          *dbus.Conn
	bidirChannel *comm.BiDirMessageChannel
	// Configured player short names; only the ones that validate at
	// setup get a handle.
	playerNames []string
	players     map[string]*lyra.Player
	// Unique bus name of each attached player, for attributing
	// signals back to a short name.
	senders map[string]string
	events  *lyra.EventManager
	// Closed by Shutdown; stops Routine even when it is mid-command
	// or already gone.
	closing   chan struct{}
	closeOnce sync.Once
}

func NewLinuxMediaPlayerSubsystem(bidirChan *comm.BiDirMessageChannel, playerNames []string) *LinuxMediaPlayerSubsystem {
	return &LinuxMediaPlayerSubsystem{
		logf:         utils.ModuleLogf(MediaPlayerSubsystemName),
		bidirChannel: bidirChan,
		playerNames:  playerNames,
		players:      map[string]*lyra.Player{},
		senders:      map[string]string{},
		closing:      make(chan struct{}),
	}
}

func (lmp *LinuxMediaPlayerSubsystem) findSender(sender string) (string, bool) {
	name, exists := lmp.senders[sender]
	return name, exists
}

// AddPlayers builds a handle for every configured player name that
// validates on the bus and records its unique name for signal
// attribution.
func (lmp *LinuxMediaPlayerSubsystem) AddPlayers() error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	for _, playerName := range lmp.playerNames {
		player, playerErr := lyra.TryNew(ctx, playerName, lmp.bus)
		if playerErr != nil {
			lmp.logf("AddPlayers: skipping %s: %v", playerName, playerErr)
			continue
		}
		ownerCall := lmp.bus.BusObject().CallWithContext(
			ctx, "org.freedesktop.DBus.GetNameOwner", 0, lyra.BusName(playerName),
		)
		var owner string
		if ownerCall.Err == nil {
			if storeErr := ownerCall.Store(&owner); storeErr == nil {
				lmp.senders[owner] = playerName
			}
		}
		lmp.players[playerName] = player
	}
	return nil
}

func (lmp *LinuxMediaPlayerSubsystem) Setup() error {
	busConn, sessionBusErr := dbus.SessionBus()
	if sessionBusErr != nil {
		return sessionBusErr
	}
	lmp.bus = busConn
	lmp.events = lyra.NewEventManager(busConn)

	if addErr := lmp.AddPlayers(); addErr != nil {
		return addErr
	}

	if _, propErr := lmp.events.AddCallback(lyra.PropertiesChanged, lmp.onPropertiesChanged); propErr != nil {
		return propErr
	}
	if _, seekErr := lmp.events.AddCallback(lyra.Seeked, lmp.onSeeked); seekErr != nil {
		return seekErr
	}

	lmp.logf("Players added: %d", len(lmp.players))
	return nil
}

// onPropertiesChanged forwards playback status and metadata changes to
// the client. Signal body: interface name, changed properties,
// invalidated property names.
func (lmp *LinuxMediaPlayerSubsystem) onPropertiesChanged(sig *dbus.Signal) bool {
	if len(sig.Body) < 2 {
		return true
	}
	properties, dbusVarOk := sig.Body[1].(map[string]dbus.Variant)
	if !dbusVarOk {
		lmp.logf("onPropertiesChanged: unexpected body: %v", sig.Body)
		return true
	}
	playerName, _ := lmp.findSender(sig.Sender)
	if playbackStatus, exists := properties["PlaybackStatus"]; exists {
		rawStatus, rawOk := playbackStatus.Value().(string)
		if !rawOk {
			lmp.logf("onPropertiesChanged: PlaybackStatus not a string")
			return true
		}
		status, statusErr := lyra.ParsePlaybackStatus(rawStatus)
		if statusErr != nil {
			lmp.logf("onPropertiesChanged: %v", statusErr)
		} else {
			lmp.bidirChannel.OutChannel <- models.Message{
				Method: MPMethod("rplayerstatus"),
				Args: &models.PlayerStatus{
					Player:     playerName,
					PlayStatus: string(status),
				},
			}
		}
	}
	if metadataVariant, exists := properties["Metadata"]; exists {
		var metadata map[string]dbus.Variant
		if storeErr := metadataVariant.Store(&metadata); storeErr != nil {
			lmp.logf("onPropertiesChanged: metadata: %v", storeErr)
			return true
		}
		trackMeta := trackMetadataFromMap(playerName, metadata)
		lmp.bidirChannel.OutChannel <- models.Message{
			Method: MPMethod("metadata"),
			Args:   &trackMeta,
		}
	}
	return true
}

// onSeeked forwards position jumps. Signal body: the new position in
// microseconds.
func (lmp *LinuxMediaPlayerSubsystem) onSeeked(sig *dbus.Signal) bool {
	if len(sig.Body) < 1 {
		return true
	}
	position, positionOk := sig.Body[0].(int64)
	if !positionOk {
		lmp.logf("onSeeked: unexpected body: %v", sig.Body)
		return true
	}
	playerName, _ := lmp.findSender(sig.Sender)
	lmp.bidirChannel.OutChannel <- models.Message{
		Method: MPMethod("rseeked"),
		Args: &models.SeekEvent{
			Player:   playerName,
			Position: position,
		},
	}
	return true
}

func trackMetadataFromMap(playerName string, metadata map[string]dbus.Variant) models.TrackMetadata {
	trackMeta := models.TrackMetadata{Player: playerName}
	if title, exists := metadata["xesam:title"]; exists {
		title.Store(&trackMeta.Title)
	}
	if album, exists := metadata["xesam:album"]; exists {
		album.Store(&trackMeta.Album)
	}
	if artists, exists := metadata["xesam:artist"]; exists {
		var artistList []string
		if storeErr := artists.Store(&artistList); storeErr == nil && len(artistList) > 0 {
			trackMeta.Artist = strings.Join(artistList, ", ")
		}
	}
	if length, exists := metadata["mpris:length"]; exists {
		length.Store(&trackMeta.Length)
	}
	return trackMeta
}

func (lmp *LinuxMediaPlayerSubsystem) player(name string) (*lyra.Player, bool) {
	player, exists := lmp.players[name]
	if !exists {
		lmp.logf("no attached player named %q", name)
	}
	return player, exists
}

// control runs one no-argument playback command against a named
// player and reports the outcome back on the out-channel.
func (lmp *LinuxMediaPlayerSubsystem) control(
	method string,
	target models.PlayerTarget,
	controlCall func(context.Context, *lyra.Player) error,
) {
	player, exists := lmp.player(target.Player)
	if !exists {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if controlErr := controlCall(ctx, player); controlErr != nil {
		lmp.logf("%s: %v", method, controlErr)
		return
	}
	lmp.bidirChannel.OutChannel <- models.Message{
		Method: MPMethod("r" + method),
		Args:   &target,
	}
}

func (lmp *LinuxMediaPlayerSubsystem) Routine() {
	lmp.logf("Starting")
	if lmp.bidirChannel.InChannel == nil || lmp.bidirChannel.OutChannel == nil {
		return
	}
lmpForRoutine:
	for {
		select {
		case readData := <-lmp.bidirChannel.InChannel:
			decoder := msgpack.NewDecoder(bytes.NewReader(readData))
			// Validate Array-based Msgpack-RPC (by checking array length)
			payloadErr := utils.ValidateDecoder(decoder)
			if payloadErr != nil {
				lmp.logf("payloadErr: %v", payloadErr)
				continue
			}

			methodData, decodeErr := decoder.DecodeString()
			if decodeErr != nil {
				lmp.logf("decodeErr: %v", decodeErr)
				continue
			}

			methodWithoutValue, method, methodExists := strings.Cut(methodData, ":")
			if !methodExists {
				method = methodWithoutValue
			}
			if method == "close" {
				break lmpForRoutine
			}
			lmp.handleCommand(method, decoder)
		case moduleCommand := <-lmp.bidirChannel.CommandChannel:
			switch moduleCommand {
			case "close":
				break lmpForRoutine
			}
		case <-lmp.closing:
			break lmpForRoutine
		}
	}
	lmp.logf("Stopping")
}

// decodeTarget reads the single PlayerTarget argument the simple
// playback commands carry.
func (lmp *LinuxMediaPlayerSubsystem) decodeTarget(method string, decoder *msgpack.Decoder) (models.PlayerTarget, bool) {
	var target models.PlayerTarget
	if parseErr := decoder.Decode(&target); parseErr != nil {
		lmp.logf("%s::parseErr: %v", method, parseErr)
		return target, false
	}
	return target, true
}

func (lmp *LinuxMediaPlayerSubsystem) handleCommand(method string, decoder *msgpack.Decoder) {
	switch method {
	case "play":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("play", target, func(ctx context.Context, p *lyra.Player) error {
				return p.Play(ctx)
			})
		}
	case "pause":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("pause", target, func(ctx context.Context, p *lyra.Player) error {
				return p.Pause(ctx)
			})
		}
	case "playpause":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("playpause", target, func(ctx context.Context, p *lyra.Player) error {
				return p.PlayPause(ctx)
			})
		}
	case "stop":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("stop", target, func(ctx context.Context, p *lyra.Player) error {
				return p.Stop(ctx)
			})
		}
	case "fwd":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("fwd", target, func(ctx context.Context, p *lyra.Player) error {
				return p.Next(ctx)
			})
		}
	case "prv":
		if target, decoded := lmp.decodeTarget(method, decoder); decoded {
			lmp.control("prv", target, func(ctx context.Context, p *lyra.Player) error {
				return p.Previous(ctx)
			})
		}
	case "seek":
		var offset models.SeekOffset
		if parseErr := decoder.Decode(&offset); parseErr != nil {
			lmp.logf("seek::parseErr: %v", parseErr)
			return
		}
		lmp.control("seek", models.PlayerTarget{Player: offset.Player}, func(ctx context.Context, p *lyra.Player) error {
			return p.Seek(ctx, time.Duration(offset.OffsetMicros)*time.Microsecond)
		})
	case "setpos":
		var position models.PositionChange
		if parseErr := decoder.Decode(&position); parseErr != nil {
			lmp.logf("setpos::parseErr: %v", parseErr)
			return
		}
		lmp.control("setpos", models.PlayerTarget{Player: position.Player}, func(ctx context.Context, p *lyra.Player) error {
			return p.SetPosition(ctx, position.Position)
		})
	case "openuri":
		var request models.OpenURIRequest
		if parseErr := decoder.Decode(&request); parseErr != nil {
			lmp.logf("openuri::parseErr: %v", parseErr)
			return
		}
		lmp.control("openuri", models.PlayerTarget{Player: request.Player}, func(ctx context.Context, p *lyra.Player) error {
			return p.OpenURI(ctx, request.URI)
		})
	case "getprop":
		var request models.PropertyRequest
		if parseErr := decoder.Decode(&request); parseErr != nil {
			lmp.logf("getprop::parseErr: %v", parseErr)
			return
		}
		player, exists := lmp.player(request.Player)
		if !exists {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		value, propErr := player.GetProperty(ctx, request.Name)
		if propErr != nil {
			lmp.logf("getprop: %v", propErr)
			return
		}
		lmp.bidirChannel.OutChannel <- models.Message{
			Method: MPMethod("rproperty"),
			Args: &models.PropertyValue{
				Player: request.Player,
				Name:   request.Name,
				Value:  value.Value(),
			},
		}
	case "setprop":
		var value models.PropertyValue
		if parseErr := decoder.Decode(&value); parseErr != nil {
			lmp.logf("setprop::parseErr: %v", parseErr)
			return
		}
		player, exists := lmp.player(value.Player)
		if !exists {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if propErr := player.SetProperty(ctx, value.Name, value.Value); propErr != nil {
			lmp.logf("setprop: %v", propErr)
		}
	case "metadata":
		target, decoded := lmp.decodeTarget(method, decoder)
		if !decoded {
			return
		}
		player, exists := lmp.player(target.Player)
		if !exists {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		metadata, metaErr := player.GetMetadata(ctx)
		if metaErr != nil {
			lmp.logf("metadata: %v", metaErr)
			return
		}
		trackMeta := trackMetadataFromMap(target.Player, metadata)
		lmp.bidirChannel.OutChannel <- models.Message{
			Method: MPMethod("metadata"),
			Args:   &trackMeta,
		}
	case "status":
		target, decoded := lmp.decodeTarget(method, decoder)
		if !decoded {
			return
		}
		player, exists := lmp.player(target.Player)
		if !exists {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		status, statusErr := player.GetPlaybackStatus(ctx)
		if statusErr != nil {
			lmp.logf("status: %v", statusErr)
			return
		}
		lmp.bidirChannel.OutChannel <- models.Message{
			Method: MPMethod("rplayerstatus"),
			Args: &models.PlayerStatus{
				Player:     target.Player,
				PlayStatus: string(status),
			},
		}
	default:
		lmp.logf("Method: %s unimplemented", method)
	}
}

func (lmp *LinuxMediaPlayerSubsystem) Shutdown() {
	// Routine may already be gone if the client closed the module, so
	// shutdown must not wait for a receiver.
	lmp.closeOnce.Do(func() { close(lmp.closing) })
	if lmp.events != nil {
		if clearErr := lmp.events.ClearCallbacks(); clearErr != nil {
			lmp.logf("Shutdown: %v", clearErr)
		}
	}
	lmp.players = map[string]*lyra.Player{}
	lmp.senders = map[string]string{}
}
