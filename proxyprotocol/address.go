package proxyprotocol

import (
	"net"

	proxyproto "github.com/pires/go-proxyproto"
)

// NewProxyAddr returns the net.Addr described by the address family and
// protocol of a PROXY protocol header.
func NewProxyAddr(proto proxyproto.AddressFamilyAndProtocol, ip net.IP, port uint16) net.Addr {
	switch {
	case proto.IsUnix():
		network := "unix"
		if !proto.IsStream() {
			network = "unixgram"
		}
		return &net.UnixAddr{Net: network, Name: ip.String()}
	case !proto.IsStream() && (proto.IsIPv4() || proto.IsIPv6()):
		return &net.UDPAddr{IP: ip, Port: int(port)}
	default:
		return &net.TCPAddr{IP: ip, Port: int(port)}
	}
}
