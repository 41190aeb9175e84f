package subsystems

import (
	"fmt"
	"runtime"

	"github.com/Artiqlate/lyra/comm"
	media_player "github.com/Artiqlate/lyra/subsystems/media_player"
)

type MediaPlayerSubsystem interface {
	Setup() error
	Routine()
	Shutdown()
}

// NewMediaPlayerSubsystem builds the platform media player subsystem
// for the configured player names.
func NewMediaPlayerSubsystem(bidirChan *comm.BiDirMessageChannel, playerNames []string) (MediaPlayerSubsystem, error) {
	// Only platform currently supported is Linux
	if runtime.GOOS == "linux" {
		return media_player.NewLinuxMediaPlayerSubsystem(bidirChan, playerNames), nil
	}
	return nil, fmt.Errorf("MediaPlayerSubsystem: OS not supported (%s)", runtime.GOOS)
}
