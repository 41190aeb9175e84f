package transmission

import (
	"net"
)

// getAvailableIPAddresses lists the IPv4 addresses of every up,
// non-loopback interface; these are the addresses clients can reach
// the bridge on.
func getAvailableIPAddresses() ([]net.IP, error) {
	var available []net.IP
	ifaces, ifacesErr := net.Interfaces()
	if ifacesErr != nil {
		return nil, ifacesErr
	}
	for _, iface := range ifaces {
		// Ignore all loop-back and down interfaces
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addresses, addrErr := iface.Addrs()
		if addrErr != nil {
			return nil, addrErr
		}

		for _, addr := range addresses {
			ipNet, isIPNet := addr.(*net.IPNet)
			if !isIPNet {
				continue
			}
			if ipNet.IP.To4() == nil {
				continue
			}
			available = append(available, ipNet.IP)
		}
	}
	return available, nil
}
