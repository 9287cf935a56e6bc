package proxyprotocol

import (
	"net"
	"time"

	"github.com/icecave/httpsredirect/connection"
)

// Listener is a net.Listener that wraps accepted connections in a Conn.
type Listener struct {
	net.Listener

	// TrustedProxies is the set of networks allowed to send a PROXY protocol
	// header. Connections from any other peer are passed through untouched, so
	// a header they send is never interpreted. If it is empty, every peer is
	// trusted.
	TrustedProxies []*net.IPNet

	// HeaderTimeout is applied to each accepted connection, see
	// Conn.HeaderTimeout.
	HeaderTimeout time.Duration
}

// Accept waits for and returns the next connection to the listener.
func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	conn := NewConn(c)
	conn.HeaderTimeout = l.HeaderTimeout

	if len(l.TrustedProxies) != 0 && !connection.Contains(l.TrustedProxies, c.RemoteAddr().String()) {
		conn.ignore = true
	}

	return conn, nil
}
