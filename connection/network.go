package connection

import (
	"fmt"
	"net"
	"strings"

	"go.uber.org/multierr"
)

// ParseNetworks parses a list of CIDR blocks. A bare IP address is treated as
// a network containing only that address. Empty entries are ignored.
func ParseNetworks(values []string) ([]*net.IPNet, error) {
	var (
		networks []*net.IPNet
		err      error
	)

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		network, e := parseNetwork(value)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}

		networks = append(networks, network)
	}

	return networks, err
}

func parseNetwork(value string) (*net.IPNet, error) {
	if strings.ContainsRune(value, '/') {
		_, network, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy network '%s': %w", value, err)
		}
		return network, nil
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy address '%s'", value)
	}

	bits := 8 * net.IPv6len
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		bits = 8 * net.IPv4len
	}

	return &net.IPNet{
		IP:   ip,
		Mask: net.CIDRMask(bits, bits),
	}, nil
}

// Contains returns true if the host part of addr, which may be a bare IP or an
// "ip:port" pair, is inside one of the given networks.
func Contains(networks []*net.IPNet, addr string) bool {
	if len(networks) == 0 {
		return false
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	for _, network := range networks {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}
