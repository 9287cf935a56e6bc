package proxyprotocol

import (
	"bufio"
	"net"
	"sync"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
)

// Conn is a net.Conn that reports the client addresses described by an
// optional PROXY protocol header at the start of the stream.
//
// The header is read lazily, on the first call to Read, LocalAddr or
// RemoteAddr, so that accepting a connection never blocks on the client.
type Conn struct {
	net.Conn

	// HeaderTimeout is the maximum time allowed for the peer to send the
	// header. It must be set before the header is read. Zero means no limit.
	HeaderTimeout time.Duration

	reader *bufio.Reader
	once   sync.Once
	ignore bool
	err    error
	header *proxyproto.Header
	local  net.Addr
	remote net.Addr
}

// NewConn returns a connection that parses a PROXY protocol header from the
// start of the stream, if one is present.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		Conn:   c,
		reader: bufio.NewReader(c),
	}
}

// Header returns the PROXY protocol header sent by the peer, or nil if the
// stream did not start with one.
func (c *Conn) Header() (*proxyproto.Header, error) {
	c.once.Do(c.init)
	return c.header, c.err
}

func (c *Conn) init() {
	if c.ignore {
		return
	}

	if c.HeaderTimeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.HeaderTimeout)); err != nil {
			c.err = err
			return
		}
		defer c.Conn.SetReadDeadline(time.Time{})
	}

	h, err := proxyproto.Read(c.reader)

	switch err {
	case nil:
		c.header = h
		if h.Command == proxyproto.PROXY {
			c.local = NewProxyAddr(h.TransportProtocol, h.DestinationAddress, h.DestinationPort)
			c.remote = NewProxyAddr(h.TransportProtocol, h.SourceAddress, h.SourcePort)
		}
	case proxyproto.ErrNoProxyProtocol, proxyproto.ErrInvalidLength:
		// Not a PROXY protocol stream, the bytes already peeked are still
		// available from the reader.
	default:
		c.err = err
	}
}

// Read reads data from the connection, after the PROXY protocol header.
func (c *Conn) Read(b []byte) (int, error) {
	if _, err := c.Header(); err != nil {
		return 0, err
	}

	return c.reader.Read(b)
}

// LocalAddr returns the destination address from the PROXY protocol header,
// or the local address of the underlying connection.
func (c *Conn) LocalAddr() net.Addr {
	if _, err := c.Header(); err == nil && c.local != nil {
		return c.local
	}

	return c.Conn.LocalAddr()
}

// RemoteAddr returns the source address from the PROXY protocol header, or
// the remote address of the underlying connection.
func (c *Conn) RemoteAddr() net.Addr {
	if _, err := c.Header(); err == nil && c.remote != nil {
		return c.remote
	}

	return c.Conn.RemoteAddr()
}
