package subsystems

import (
	"fmt"

	"github.com/grandcat/zeroconf"
)

const (
	Service = "_lyra-bridge._tcp"
	// "Default port" is all resolved in bridge/server.go
)

type NetworkDiscovery struct {
	server *zeroconf.Server
}

// NewNetworkDiscovery advertises the bridge on the local network over
// mDNS so clients can find it without configuration.
func NewNetworkDiscovery(instanceName string, port int, secure bool) (*NetworkDiscovery, error) {
	zcServer, registerErr := zeroconf.Register(
		instanceName,
		Service,
		"local.",
		port,
		// If more information needs to be passed, add it here.
		[]string{fmt.Sprintf("secure=%t", secure), "proto=msgpack"},
		nil,
	)
	if registerErr != nil {
		return nil, registerErr
	}
	return &NetworkDiscovery{zcServer}, nil
}

func (nd *NetworkDiscovery) Shutdown() {
	nd.server.Shutdown()
}
