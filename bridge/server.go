package bridge

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/Artiqlate/lyra/comm"
	"github.com/Artiqlate/lyra/models"
	"github.com/Artiqlate/lyra/subsystems"
	"github.com/Artiqlate/lyra/transmission"
	"github.com/Artiqlate/lyra/utils"
	"github.com/sirupsen/logrus"
)

type ServerSignalChannels struct {
	moduleInitChannel  chan []string
	moduleCloseChannel chan bool
	netTransmissionErr chan error
	progSignals        chan os.Signal
	commChannels       *comm.CommChannels
}

func NewServerSignalChannels(moduleInitChan chan []string, moduleCloseChan chan bool) *ServerSignalChannels {
	return &ServerSignalChannels{
		moduleInitChannel:  moduleInitChan,
		moduleCloseChannel: moduleCloseChan,
		netTransmissionErr: make(chan error, 1),
		progSignals:        make(chan os.Signal, 1),
		commChannels:       comm.NewCommChannels(),
	}
}

type ServerModule struct {
	logf         func(string, ...interface{})
	config       *Config
	writeChannel chan models.Message
	nt           *transmission.NetworkTransmissionServer
	nd           *subsystems.NetworkDiscovery
	mp           subsystems.MediaPlayerSubsystem
	signals      *ServerSignalChannels
}

func NewServerModule(config *Config) (*ServerModule, error) {
	moduleInitChan := make(chan []string, 20)
	moduleCloseChan := make(chan bool)
	serverWriteChannel := make(chan models.Message)
	serverSignalChannels := NewServerSignalChannels(moduleInitChan, moduleCloseChan)
	return &ServerModule{
		logf:         utils.ModuleLogf("srv"),
		config:       config,
		writeChannel: serverWriteChannel,
		nt: transmission.NewNetworkTransmissionServer(
			config.Port,
			serverWriteChannel,
			moduleInitChan,
			serverSignalChannels.commChannels,
		),
		signals: serverSignalChannels,
		// Modules: Add modules here. This is "mp", media_player module
		mp: nil,
	}, nil
}

func (s *ServerModule) setup() {
	// Interrupt will hit this signal, should make everything
	signal.Notify(s.signals.progSignals, os.Interrupt)

	if s.config.Advertise {
		discovery, discoveryErr := subsystems.NewNetworkDiscovery(
			s.config.InstanceName, s.config.Port, s.config.Secure,
		)
		if discoveryErr != nil {
			s.logf("discovery disabled: %v", discoveryErr)
		} else {
			s.nd = discovery
		}
	}

	// -- Setup for any other modules
}

func (s *ServerModule) initializeModule(mods []string) []string {
	enabledModules := []string{}
	for _, mod := range mods {
		s.logf("Enabling module: %s", mod)
		switch mod {
		case "mp":
			mPlayer, mPlayerErr := subsystems.NewMediaPlayerSubsystem(
				&s.signals.commChannels.MPChannel,
				s.config.Players,
			)
			if mPlayerErr != nil {
				s.logf("mPlayerErr: %v", mPlayerErr)
				continue
			}
			if setupErr := mPlayer.Setup(); setupErr != nil {
				s.logf("mp setup: %v", setupErr)
				continue
			}
			s.mp = mPlayer
			// Run media player coroutine
			go s.mp.Routine()
			enabledModules = append(enabledModules, mod)
		}
	}
	return enabledModules
}

func (s *ServerModule) closeModule() {
	// -- MEDIA PLAYER
	if s.mp != nil {
		s.mp.Shutdown()
		s.mp = nil
	}
}

// forwardModuleOutput drains subsystem out-channels into the
// transmission write channel so module replies and events reach the
// connected client.
func (s *ServerModule) forwardModuleOutput() {
	for moduleMessage := range s.signals.commChannels.MPChannel.OutChannel {
		s.writeChannel <- moduleMessage
	}
}

func (s *ServerModule) routine() {
routineForLoop:
	for {
		select {
		// Module Initialization Channel
		case initModule := <-s.signals.moduleInitChannel:
			initializedModules := s.initializeModule(initModule)
			s.logf("Initialized modules: %s", initializedModules)
			s.writeChannel <- *models.NewInitFromArgs(initializedModules).GenMessage("rinit")
			continue routineForLoop
		// Module Close Channel
		case <-s.signals.moduleCloseChannel:
			s.logf("close triggered")
			s.closeModule()
		// If the server encounters an error
		case servErr := <-s.signals.netTransmissionErr:
			s.logf("NetworkTransmission error: %v", servErr)
			s.signals.netTransmissionErr <- servErr
			break routineForLoop
		// When Interrupt Calls are Sent
		case <-s.signals.progSignals:
			s.logf("Stopping")
			break routineForLoop
		}
	}
}

func (s *ServerModule) shutdown() {
	shutdownContext, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if len(s.signals.netTransmissionErr) != 0 {
		s.logf("server error: %v", <-s.signals.netTransmissionErr)
	}

	// -- DISCOVERY SHUTDOWN
	if s.nd != nil {
		s.nd.Shutdown()
	}

	// -- MEDIA PLAYER SHUTDOWN
	if s.mp != nil {
		s.mp.Shutdown()
	}

	// -- NETWORK TRANSMISSION SHUTDOWN
	shutDownErr := s.nt.Shutdown(shutdownContext)
	if shutDownErr != nil {
		logrus.Fatalf("server shutdown err: %v", shutDownErr)
	}
}

func (s *ServerModule) Run() {
	// -- SETUP
	s.setup()

	// -- TRANSMISSION MODULE --
	go s.nt.Coroutine(s.signals.netTransmissionErr)

	// -- MODULE OUTPUT FORWARDING --
	go s.forwardModuleOutput()

	// -- RUN ROUTINE
	s.routine()

	// SHUT DOWN ALL MODULES
	s.shutdown()
}
