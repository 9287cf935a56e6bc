package redirect

import (
	"net/http"
	"strings"
)

// SchemeHTTPS is the transport scheme of a secure connection.
const SchemeHTTPS = "https"

// ConnectionInfo is the metadata of the connection a request arrived on, as
// reported by the server or a trusted proxy in front of it.
type ConnectionInfo struct {
	// Scheme is the transport scheme, typically "http" or "https".
	Scheme string

	// Host is the host the client requested, including the port if the
	// client sent one.
	Host string
}

// IsSecure returns true if the connection is encrypted in transit.
//
// The scheme is compared case-insensitively, as URI schemes are
// case-insensitive, so that a proxy reporting "HTTPS" is not redirected.
func (info ConnectionInfo) IsSecure() bool {
	return strings.EqualFold(info.Scheme, SchemeHTTPS)
}

// Request is an HTTP request along with its connection metadata.
type Request struct {
	*http.Request

	Connection ConnectionInfo
}

// NewRequest returns a request with connection metadata taken directly from
// the HTTP request, without consulting any proxy headers.
func NewRequest(r *http.Request) *Request {
	info := ConnectionInfo{
		Scheme: "http",
		Host:   r.Host,
	}

	if r.TLS != nil {
		info.Scheme = SchemeHTTPS
	}

	return &Request{r, info}
}

// Target returns the request target (path and query) exactly as it was
// received from the client.
func (r *Request) Target() string {
	if r.RequestURI != "" {
		return r.RequestURI
	}

	// Requests that were not read by a server (client requests, tests) have
	// no raw request URI.
	return r.URL.RequestURI()
}
