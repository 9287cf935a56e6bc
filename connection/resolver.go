package connection

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
	"github.com/icecave/httpsredirect/redirect"
)

// Resolver determines the connection metadata of an HTTP request.
//
// Forwarding headers are only honoured when the request was received directly
// from a trusted proxy. A request from any other peer is described by the
// connection it arrived on.
type Resolver struct {
	// TrustedProxies is the set of networks whose forwarding headers are
	// trusted.
	TrustedProxies []*net.IPNet
}

// Resolve returns the connection metadata for r.
func (res *Resolver) Resolve(r *http.Request) redirect.ConnectionInfo {
	info := redirect.NewRequest(r).Connection

	if !Contains(res.TrustedProxies, r.RemoteAddr) {
		return info
	}

	if proto, host, ok := forwarded(r.Header); ok {
		if proto != "" {
			info.Scheme = strings.ToLower(proto)
		}
		if host != "" {
			info.Host = host
		}
		return info
	}

	if proto := firstValue(r.Header, "X-Forwarded-Proto"); proto != "" {
		info.Scheme = strings.ToLower(proto)
	}

	if host := firstValue(r.Header, "X-Forwarded-Host"); host != "" {
		info.Host = host
	}

	return info
}

// Request returns r wrapped with its resolved connection metadata.
func (res *Resolver) Request(r *http.Request) *redirect.Request {
	return &redirect.Request{
		Request:    r,
		Connection: res.Resolve(r),
	}
}

// firstValue returns the left-most element of a comma separated header, which
// was added by the proxy closest to the client.
func firstValue(h http.Header, key string) string {
	values := header.ParseList(h, key)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
