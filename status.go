package lyra

import "fmt"

// PlaybackStatus is the closed set of MPRIS playback status values.
//
// Ref: https://specifications.freedesktop.org/mpris-spec/latest/Player_Interface.html#Enum:Playback_Status
type PlaybackStatus string

const (
	PlaybackStatusPlaying PlaybackStatus = "Playing"
	PlaybackStatusPaused  PlaybackStatus = "Paused"
	PlaybackStatusStopped PlaybackStatus = "Stopped"
	PlaybackStatusError   PlaybackStatus = ""
)

func ParsePlaybackStatus(playbackStatus string) (PlaybackStatus, error) {
	switch status := PlaybackStatus(playbackStatus); status {
	case PlaybackStatusPlaying, PlaybackStatusPaused, PlaybackStatusStopped:
		return status, nil
	default:
		return PlaybackStatusError, fmt.Errorf(
			"lyra: '%s' is not a valid playback status value",
			playbackStatus,
		)
	}
}

// LoopStatus is the closed set of MPRIS loop status values.
type LoopStatus string

const (
	LoopStatusNone     LoopStatus = "None"
	LoopStatusTrack    LoopStatus = "Track"
	LoopStatusPlaylist LoopStatus = "Playlist"
	LoopStatusError    LoopStatus = ""
)

func ParseLoopStatus(loopStatus string) (LoopStatus, error) {
	switch status := LoopStatus(loopStatus); status {
	case LoopStatusNone, LoopStatusTrack, LoopStatusPlaylist:
		return status, nil
	default:
		return LoopStatusError, fmt.Errorf(
			"lyra: '%s' is not a valid loop status value",
			loopStatus,
		)
	}
}
